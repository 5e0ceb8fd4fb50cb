// Package autochat implements the scripted auto-reply bot: welcome
// messages, intent classification, canned responses with manager
// overrides, and a hard per-conversation reply quota.
package autochat

import (
	"strings"

	"chatdesk/internal/dbmysql"
)

// Intent is the classified purpose of a customer turn.
type Intent string

const (
	IntentTalkToHuman    Intent = "talk_to_human"
	IntentClaimOffer     Intent = "claim_offer"
	IntentBrowseServices Intent = "browse_services"
	IntentBrowseMore     Intent = "browse_more"
	IntentBookNow        Intent = "book_now"
	IntentSelectService  Intent = "select_service"
	IntentSelectTimeSlot Intent = "select_time_slot"
	IntentViewLocation   Intent = "view_location"
	IntentCallBusiness   Intent = "call_business"
	IntentThankYou       Intent = "thank_you"
	IntentGreeting       Intent = "greeting"
	IntentFallback       Intent = "fallback"
)

// Quick-reply action identifiers. These travel over the wire inside
// quick replies, so they stay stable across releases.
const (
	ActionTalkWithManager = "talk_with_manager"
	ActionClaimOffer      = "claim_offer"
	ActionServicesPricing = "services_pricing"
	ActionServicesMore    = "services_more"
	ActionBookNow         = "book_now"
	ActionSpaLocation     = "spa_location"
	ActionCallSpa         = "call_spa"
)

// Classification is an intent plus the catalog entry it resolved to,
// when the intent names one.
type Classification struct {
	Intent  Intent
	Service *dbmysql.ServiceItem
	Slot    *dbmysql.TimeSlot
}

type classifyInput struct {
	action   string
	lowered  string
	services []dbmysql.ServiceItem
	slots    []dbmysql.TimeSlot

	service *dbmysql.ServiceItem
	slot    *dbmysql.TimeSlot
}

func (in *classifyInput) actionIs(action string) bool {
	return in.action == action
}

func (in *classifyInput) saysAny(phrases ...string) bool {
	for _, phrase := range phrases {
		if strings.Contains(in.lowered, phrase) {
			return true
		}
	}
	return false
}

type intentRule struct {
	intent Intent
	match  func(in *classifyInput) bool
}

// intentRules is evaluated top to bottom; the first match wins. The
// ordering is load-bearing: a message like "book the head massage"
// must resolve to the booking flow before the greeting catch-all, and
// explicit quick-reply actions always outrank free-text guessing.
var intentRules = []intentRule{
	{IntentTalkToHuman, func(in *classifyInput) bool {
		return in.actionIs(ActionTalkWithManager) ||
			in.saysAny("talk with manager", "speak with manager", "connect with manager", "human", "real person")
	}},
	{IntentClaimOffer, func(in *classifyInput) bool {
		return in.actionIs(ActionClaimOffer) ||
			in.saysAny("claim") ||
			(in.saysAny("yes") && in.saysAny("offer"))
	}},
	{IntentBrowseServices, func(in *classifyInput) bool {
		return in.actionIs(ActionServicesPricing) ||
			in.saysAny("service", "menu", "price", "pricing")
	}},
	{IntentBrowseMore, func(in *classifyInput) bool {
		return in.actionIs(ActionServicesMore)
	}},
	{IntentBookNow, func(in *classifyInput) bool {
		return in.actionIs(ActionBookNow) ||
			in.saysAny("book", "appointment", "schedule")
	}},
	{IntentSelectService, func(in *classifyInput) bool {
		for i := range in.services {
			svc := &in.services[i]
			if in.actionIs(svc.Action) || in.saysAny(strings.ToLower(svc.Name)) {
				in.service = svc
				return true
			}
		}
		return false
	}},
	{IntentSelectTimeSlot, func(in *classifyInput) bool {
		for i := range in.slots {
			slot := &in.slots[i]
			if in.actionIs(slot.Action) || in.saysAny(strings.ToLower(slot.Label)) {
				in.slot = slot
				return true
			}
		}
		return false
	}},
	{IntentViewLocation, func(in *classifyInput) bool {
		return in.actionIs(ActionSpaLocation) ||
			in.saysAny("location", "address", "where")
	}},
	{IntentCallBusiness, func(in *classifyInput) bool {
		return in.actionIs(ActionCallSpa) ||
			in.saysAny("call", "phone", "contact")
	}},
	{IntentThankYou, func(in *classifyInput) bool {
		return in.saysAny("thank")
	}},
	{IntentGreeting, func(in *classifyInput) bool {
		return in.lowered == "" || in.saysAny("hello", "hi", "hey")
	}},
}

// Classify resolves a customer turn against the manager's catalog. The
// explicit quick-reply action, when present, is matched alongside the
// free text; a turn that matches nothing falls through to the fallback
// intent.
func Classify(content, action string, services []dbmysql.ServiceItem, slots []dbmysql.TimeSlot) Classification {
	in := &classifyInput{
		action:   action,
		lowered:  strings.ToLower(strings.TrimSpace(content)),
		services: services,
		slots:    slots,
	}
	for _, rule := range intentRules {
		if rule.match(in) {
			return Classification{Intent: rule.intent, Service: in.service, Slot: in.slot}
		}
	}
	return Classification{Intent: IntentFallback}
}
