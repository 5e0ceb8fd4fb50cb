package autochat

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

// serviceChunkSize is how many catalog entries one browsing turn shows.
const serviceChunkSize = 5

// defaultServices is the fallback catalog used until the manager
// configures their own.
var defaultServices = []dbmysql.ServiceItem{
	{Name: "Head Massage", Description: "60 min | ₹1,999", Action: "service_head_massage"},
	{Name: "Foot Reflexology", Description: "60 min | ₹1,999", Action: "service_foot_reflexology"},
	{Name: "Back Massage", Description: "60 min | ₹1,999", Action: "service_back_massage"},
	{Name: "Full Body Dry Massage", Description: "60 min | ₹1,999", Action: "service_full_body_dry"},
	{Name: "Full Body Oil Massage", Description: "60 min | ₹1,999 · 90 min | ₹2,999", Action: "service_full_body_oil"},
	{Name: "Full Body Oil Massage + Jacuzzi", Description: "60 min | ₹3,999 · 90 min | ₹4,999 · 120 min | ₹5,999", Action: "service_full_body_oil_jacuzzi"},
	{Name: "Four Hand Couple Special", Description: "60 min | ₹3,999 · 90 min | ₹5,999 · 120 min | ₹7,999", Action: "service_four_hand_couple_special"},
	{Name: "Four Hand Couple + Jacuzzi", Description: "60 min | ₹5,999 · 90 min | ₹7,999 · 120 min | ₹9,999", Action: "service_four_hand_couple_jacuzzi"},
	{Name: "Full Body Massage + Scrub", Description: "60 min | ₹2,499 · 90 min | ₹3,499", Action: "service_body_scrub"},
	{Name: "Full Body Massage + Scrub + Jacuzzi", Description: "60 min | ₹4,499 · 90 min | ₹5,499 · 120 min | ₹7,499", Action: "service_body_scrub_jacuzzi"},
	{Name: "Full Body Thai Massage", Description: "60 min | ₹2,499 · 90 min | ₹3,499 · 120 min | ₹4,499", Action: "service_thai"},
	{Name: "Full Body Thai Massage + Jacuzzi", Description: "60 min | ₹3,999 · 90 min | ₹4,999 · 120 min | ₹5,999", Action: "service_thai_jacuzzi"},
	{Name: "Full Body Thai Massage + Scrub", Description: "60 min | ₹2,999 · 90 min | ₹3,999 · 120 min | ₹4,999", Action: "service_thai_scrub"},
	{Name: "Full Body Thai Massage + Scrub + Jacuzzi", Description: "60 min | ₹4,499 · 90 min | ₹5,499 · 120 min | ₹6,499", Action: "service_thai_scrub_jacuzzi"},
	{Name: "Four Hand Massage", Description: "60 min | ₹3,499 · 90 min | ₹4,999 · 120 min | ₹6,499", Action: "service_four_hand"},
	{Name: "Four Hand Massage + Jacuzzi", Description: "60 min | ₹4,999 · 90 min | ₹6,499 · 120 min | ₹7,999", Action: "service_four_hand_jacuzzi"},
	{Name: "Four Hand Massage + Scrub", Description: "60 min | ₹4,499 · 90 min | ₹5,999 · 120 min | ₹7,499", Action: "service_four_hand_scrub"},
	{Name: "Four Hand Massage + Scrub + Jacuzzi", Description: "60 min | ₹5,999 · 90 min | ₹7,499 · 120 min | ₹8,999", Action: "service_four_hand_scrub_jacuzzi"},
	{Name: "French Aroma Massage", Description: "60 min | ₹1,999 · 90 min | ₹2,999 · 120 min | ₹3,999", Action: "service_french_aroma"},
	{Name: "Swedish Massage", Description: "60 min | ₹1,999 · 90 min | ₹2,999 · 120 min | ₹3,999", Action: "service_swedish"},
	{Name: "Balinese Massage", Description: "60 min | ₹2,499 · 90 min | ₹3,499 · 120 min | ₹4,499", Action: "service_balinese"},
	{Name: "Deep Tissue Massage", Description: "60 min | ₹2,799 · 90 min | ₹3,799 · 120 min | ₹4,799", Action: "service_deep_tissue"},
	{Name: "Lomi Lomi Massage", Description: "60 min | ₹2,499 · 90 min | ₹3,499 · 120 min | ₹4,499", Action: "service_lomi_lomi"},
	{Name: "Heritage Ladies Special", Description: "60 min | ₹3,499 · 90 min | ₹4,499", Action: "service_heritage_ladies"},
}

var defaultTimeSlots = []dbmysql.TimeSlot{
	{Label: "10:00 AM – 12:00 PM", Action: "slot_morning"},
	{Label: "12:00 PM – 2:00 PM", Action: "slot_midday"},
	{Label: "2:00 PM – 4:00 PM", Action: "slot_afternoon"},
	{Label: "4:00 PM – 6:00 PM", Action: "slot_evening"},
}

const (
	fallbackBusinessName = "Our Spa"
	fallbackPhone        = "+91 9125846358"
	fallbackGuestName    = "Valued Guest"
)

// managerInfo carries the business details substituted into templates.
type managerInfo struct {
	BusinessName string
	Phone        string
	LocationLink string
	ManagerName  string
}

func managerInfoFrom(p *common.Participant) managerInfo {
	info := managerInfo{
		BusinessName: fallbackBusinessName,
		Phone:        fallbackPhone,
		ManagerName:  "Manager",
	}
	if p != nil {
		if p.BusinessName != "" {
			info.BusinessName = p.BusinessName
		}
		if p.Phone != "" {
			info.Phone = p.Phone
		}
		if p.Name != "" {
			info.ManagerName = p.Name
		} else {
			info.ManagerName = info.BusinessName
		}
	}
	info.LocationLink = "https://maps.google.com/?q=" + url.QueryEscape(info.BusinessName)
	return info
}

// reply is one scripted bot turn before it becomes a message.
type reply struct {
	Content         string
	QuickReplies    []common.QuickReply
	Booking         *dbmysql.BookingState
	DisableAutoChat bool
}

// renderTemplate substitutes {placeholder} tokens. Unknown tokens are
// left untouched so a typo in a manager template stays visible.
func renderTemplate(content string, vars map[string]string) string {
	for key, value := range vars {
		content = strings.ReplaceAll(content, "{"+key+"}", value)
	}
	return content
}

// formatAppointmentDate renders the long-form date shown in booking
// confirmations. Nil means tomorrow.
func formatAppointmentDate(date *time.Time) string {
	d := time.Now().AddDate(0, 0, 1)
	if date != nil {
		d = *date
	}
	return d.Format("Monday, 2 January 2006")
}

// responder builds one scripted turn from the classified intent, the
// effective catalog, and the conversation's booking progress.
type responder struct {
	services     []dbmysql.ServiceItem
	timeSlots    []dbmysql.TimeSlot
	config       *dbmysql.AutoReplyConfig
	manager      managerInfo
	customerName string
	booking      dbmysql.BookingState
}

func newResponder(config *dbmysql.AutoReplyConfig, manager managerInfo, customerName string, booking dbmysql.BookingState) *responder {
	r := &responder{
		services:     defaultServices,
		timeSlots:    defaultTimeSlots,
		config:       config,
		manager:      manager,
		customerName: customerName,
		booking:      booking,
	}
	if config != nil {
		if services := []dbmysql.ServiceItem(config.Services); len(services) > 0 {
			r.services = services
		}
		if slots := []dbmysql.TimeSlot(config.TimeSlots); len(slots) > 0 {
			r.timeSlots = slots
		}
	}
	return r
}

func (r *responder) custom(key string) (dbmysql.ResponseTemplate, bool) {
	if r.config == nil {
		return dbmysql.ResponseTemplate{}, false
	}
	return r.config.Response(key)
}

func (r *responder) guestName() string {
	if r.customerName != "" {
		return r.customerName
	}
	return fallbackGuestName
}

// serviceQuickReplies turns the first n catalog entries into quick
// replies.
func serviceQuickReplies(services []dbmysql.ServiceItem, n int) []common.QuickReply {
	if n > len(services) {
		n = len(services)
	}
	out := make([]common.QuickReply, 0, n)
	for _, svc := range services[:n] {
		out = append(out, common.QuickReply{Text: svc.Name, Action: svc.Action})
	}
	return out
}

func slotQuickReplies(slots []dbmysql.TimeSlot) []common.QuickReply {
	out := make([]common.QuickReply, 0, len(slots))
	for _, slot := range slots {
		out = append(out, common.QuickReply{Text: slot.Label, Action: slot.Action})
	}
	return out
}

func serviceList(services []dbmysql.ServiceItem, sep string) string {
	lines := make([]string, 0, len(services))
	for _, svc := range services {
		lines = append(lines, fmt.Sprintf("• %s %s %s", svc.Name, sep, svc.Description))
	}
	return strings.Join(lines, "\n")
}

// welcome builds the one-time greeting for a brand-new conversation.
func (r *responder) welcome() reply {
	if r.config != nil {
		if tpl := r.config.Welcome.Data(); tpl.Content != "" {
			return reply{
				Content: renderTemplate(tpl.Content, map[string]string{
					"customerName": r.guestName(),
					"businessName": r.manager.BusinessName,
					"locationLink": r.manager.LocationLink,
				}),
				QuickReplies: tpl.QuickReplies,
			}
		}
	}
	name := r.customerName
	if name == "" {
		name = "Guest"
	}
	return reply{
		Content: fmt.Sprintf("Welcome, %s! 🌿\n\nYou’ve reached %s, where every visit is personalised and unrushed. If it’s your first time with us, you’re entitled to **10%% off** or a **complimentary 15-minute neck ritual** with any full treatment.\n\nTap *Explore Bookings* to browse curated massages, or choose a quick option below and I’ll stay with you until everything is confirmed.", name, r.manager.BusinessName),
		QuickReplies: []common.QuickReply{
			{Text: "Book Now", Action: ActionBookNow},
			{Text: "Services & Pricing", Action: ActionServicesPricing},
			{Text: "Complimentary Offer", Action: ActionClaimOffer},
			{Text: "Call Concierge", Action: ActionCallSpa},
		},
	}
}

// respond dispatches the classification to its builder.
func (r *responder) respond(c Classification, content string) reply {
	switch c.Intent {
	case IntentTalkToHuman:
		return r.talkToHuman()
	case IntentClaimOffer:
		return r.claimOffer()
	case IntentBrowseServices:
		return r.browseServices()
	case IntentBrowseMore:
		return r.browseMore()
	case IntentBookNow:
		return r.bookNow()
	case IntentSelectService:
		return r.selectService(c.Service)
	case IntentSelectTimeSlot:
		return r.selectTimeSlot(c.Slot)
	case IntentViewLocation:
		return r.viewLocation()
	case IntentCallBusiness:
		return r.callBusiness()
	case IntentThankYou:
		return r.thankYou()
	case IntentGreeting:
		return r.greeting()
	default:
		return r.fallback(content)
	}
}

func (r *responder) talkToHuman() reply {
	if tpl, ok := r.custom("talkWithManager"); ok {
		return reply{Content: tpl.Content, QuickReplies: tpl.QuickReplies, DisableAutoChat: true}
	}
	return reply{
		Content:         "I'll connect you with our manager right away! They'll respond to you shortly. Kindly wait for a few minutes.😊",
		DisableAutoChat: true,
	}
}

func (r *responder) claimOffer() reply {
	top := r.services
	if len(top) > 3 {
		top = top[:3]
	}
	list := serviceList(top, "–")
	booking := &dbmysql.BookingState{OfferClaimed: true}
	quickReplies := append(serviceQuickReplies(r.services, 3),
		common.QuickReply{Text: "View Treatments", Action: ActionServicesPricing},
		common.QuickReply{Text: "Call Concierge", Action: ActionCallSpa},
	)

	if tpl, ok := r.custom("claimOffer"); ok {
		out := reply{
			Content:      renderTemplate(tpl.Content, map[string]string{"serviceList": list}),
			QuickReplies: tpl.QuickReplies,
			Booking:      booking,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content: "Perfect! 🎉 You've unlocked **10% off** or a **FREE 15-min neck & shoulder massage** with any paid service.\n\nHere are our guest favorites:\n" +
			list + "\n\nReady to choose your pampering experience?",
		QuickReplies: quickReplies,
		Booking:      booking,
	}
}

func (r *responder) browseServices() reply {
	top := r.services
	if len(top) > serviceChunkSize {
		top = top[:serviceChunkSize]
	}
	hasMore := len(r.services) > serviceChunkSize
	list := serviceList(top, "—")
	if hasMore {
		list += "\n\n…plus additional bespoke treatments on request."
	}
	nextOffset := len(r.services)
	if hasMore {
		nextOffset = serviceChunkSize
	}
	booking := &dbmysql.BookingState{
		ServiceBrowseOffset:  nextOffset,
		ServicesFullyBrowsed: !hasMore,
	}
	quickReplies := append(serviceQuickReplies(top, 3),
		common.QuickReply{Text: "Reserve a Slot", Action: ActionBookNow},
		common.QuickReply{Text: "Complimentary Offer", Action: ActionClaimOffer},
	)
	if hasMore {
		quickReplies = append(quickReplies, common.QuickReply{Text: "More Treatments", Action: ActionServicesMore})
	}

	if tpl, ok := r.custom("servicesPricing"); ok {
		out := reply{
			Content:      renderTemplate(tpl.Content, map[string]string{"serviceList": list}),
			QuickReplies: tpl.QuickReplies,
			Booking:      booking,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content: "Here’s a curated look at our signature rituals:\n\n" + list +
			"\n\nEvery visit includes a welcome elixir, aromatherapy lounge access, and a personalised wellness consult. Would you like me to reserve a time?",
		QuickReplies: quickReplies,
		Booking:      booking,
	}
}

func (r *responder) browseMore() reply {
	offset := r.booking.ServiceBrowseOffset
	if offset <= 0 {
		offset = serviceChunkSize
	}
	if offset >= len(r.services) {
		return reply{
			Content: "You’ve already viewed the full menu. I’d be happy to recommend something if you tell me the mood you’re in.",
			QuickReplies: []common.QuickReply{
				{Text: "Reserve a Slot", Action: ActionBookNow},
				{Text: "Complimentary Offer", Action: ActionClaimOffer},
				{Text: "Call Concierge", Action: ActionCallSpa},
			},
			Booking: &dbmysql.BookingState{
				ServiceBrowseOffset:  len(r.services),
				ServicesFullyBrowsed: true,
			},
		}
	}

	end := offset + serviceChunkSize
	if end > len(r.services) {
		end = len(r.services)
	}
	remaining := r.services[offset:end]
	hasMore := len(r.services) > end

	quickReplies := append(serviceQuickReplies(remaining, 3),
		common.QuickReply{Text: "Reserve a Slot", Action: ActionBookNow},
		common.QuickReply{Text: "Complimentary Offer", Action: ActionClaimOffer},
		common.QuickReply{Text: "Call Concierge", Action: ActionCallSpa},
	)
	if hasMore {
		quickReplies = append(quickReplies, common.QuickReply{Text: "More Treatments", Action: ActionServicesMore})
	}

	return reply{
		Content: "Here are additional treatments our guests love:\n\n" + serviceList(remaining, "—") +
			"\n\nTell me which one interests you and I’ll line up the best time.",
		QuickReplies: quickReplies,
		Booking: &dbmysql.BookingState{
			ServiceBrowseOffset:  end,
			ServicesFullyBrowsed: !hasMore,
		},
	}
}

func (r *responder) bookNow() reply {
	quickReplies := append(serviceQuickReplies(r.services, 3),
		common.QuickReply{Text: "View More Services", Action: ActionServicesPricing},
		common.QuickReply{Text: "Call Concierge", Action: ActionCallSpa},
		common.QuickReply{Text: "Visit Us", Action: ActionSpaLocation},
	)

	if tpl, ok := r.custom("bookNow"); ok {
		out := reply{Content: tpl.Content, QuickReplies: tpl.QuickReplies}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      "Lovely. Tell me which ritual you’re in the mood for and I’ll hold the calmest slot for you.",
		QuickReplies: quickReplies,
	}
}

func (r *responder) selectService(svc *dbmysql.ServiceItem) reply {
	booking := &dbmysql.BookingState{
		Service:            svc.Name,
		ServiceDescription: svc.Description,
	}
	quickReplies := append(slotQuickReplies(r.timeSlots),
		common.QuickReply{Text: "Change Service", Action: ActionBookNow},
		common.QuickReply{Text: "Call the Spa", Action: ActionCallSpa},
	)

	if tpl, ok := r.custom("serviceSelected"); ok {
		out := reply{
			Content: renderTemplate(tpl.Content, map[string]string{
				"serviceName":        svc.Name,
				"serviceDescription": svc.Description,
			}),
			QuickReplies: tpl.QuickReplies,
			Booking:      booking,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      fmt.Sprintf("Excellent choice! 🌟 **%s** (%s)\n\nLet me know which time frame works best for you, and I'll reserve a cozy suite.", svc.Name, svc.Description),
		QuickReplies: quickReplies,
		Booking:      booking,
	}
}

func (r *responder) selectTimeSlot(slot *dbmysql.TimeSlot) reply {
	serviceName := r.booking.Service
	if serviceName == "" {
		serviceName = "Your selected treatment"
	}

	appointment := time.Now().AddDate(0, 0, 1)
	if r.booking.Date != nil {
		appointment = *r.booking.Date
	}
	formattedDate := formatAppointmentDate(&appointment)

	offerText := ""
	if r.booking.OfferClaimed {
		offerText = " + FREE Neck Massage / 10% OFF"
	}

	booking := &dbmysql.BookingState{
		TimeSlot:  slot.Label,
		Date:      &appointment,
		Confirmed: true,
	}
	quickReplies := []common.QuickReply{
		{Text: "Change Time", Action: ActionBookNow},
		{Text: "View Location", Action: ActionSpaLocation},
		{Text: "Call the Spa", Action: ActionCallSpa},
		{Text: "Chat with Manager", Action: ActionTalkWithManager},
	}

	if tpl, ok := r.custom("bookingConfirmed"); ok {
		out := reply{
			Content: renderTemplate(tpl.Content, map[string]string{
				"customerName":  r.guestName(),
				"date":          formattedDate,
				"time":          slot.Label,
				"serviceName":   serviceName,
				"offerText":     offerText,
				"therapistName": r.manager.ManagerName,
				"locationLink":  r.manager.LocationLink,
				"businessName":  r.manager.BusinessName,
			}),
			QuickReplies: tpl.QuickReplies,
			Booking:      booking,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content: fmt.Sprintf(
			"**Booking Confirmed!** 🎈\n\nDear %s,\n\n📅 **Date:** %s\n🕒 **Time:** %s\n💆‍♀️ **Service:** %s%s\n👤 **Therapist:** %s will be ready for you!\n📍 **Location:** %s\n\n🌿 Arrive 10 mins early for a welcome herbal tea\n\n💬 **Need to reschedule?** Just reply *CHANGE*\n❓ **Questions?** Reply *HELP*\n\nSee you soon, %s! 😊\n\n_%s Team_",
			r.guestName(), formattedDate, slot.Label, serviceName, offerText,
			r.manager.ManagerName, r.manager.LocationLink, r.guestName(), r.manager.BusinessName,
		),
		QuickReplies: quickReplies,
		Booking:      booking,
	}
}

func (r *responder) viewLocation() reply {
	quickReplies := []common.QuickReply{
		{Text: "Call the Spa", Action: ActionCallSpa},
		{Text: "Book an Appointment", Action: ActionBookNow},
		{Text: "Claim Welcome Offer", Action: ActionClaimOffer},
	}

	if tpl, ok := r.custom("location"); ok {
		out := reply{
			Content: renderTemplate(tpl.Content, map[string]string{
				"locationLink": r.manager.LocationLink,
				"businessName": r.manager.BusinessName,
			}),
			QuickReplies: tpl.QuickReplies,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      fmt.Sprintf("📍 **We're located at:**\n%s\n\n✨ **Amenities:**\n• Free parking available\n• Garden courtyard access\n• Easy to find location\n\nNeed directions or prefer a call?", r.manager.LocationLink),
		QuickReplies: quickReplies,
	}
}

func (r *responder) callBusiness() reply {
	quickReplies := []common.QuickReply{
		{Text: "Book an Appointment", Action: ActionBookNow},
		{Text: "View Location", Action: ActionSpaLocation},
		{Text: "Talk with Manager", Action: ActionTalkWithManager},
	}

	if tpl, ok := r.custom("callSpa"); ok {
		out := reply{
			Content: renderTemplate(tpl.Content, map[string]string{
				"phone":        r.manager.Phone,
				"businessName": r.manager.BusinessName,
			}),
			QuickReplies: tpl.QuickReplies,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      fmt.Sprintf("📞 **You can reach us directly at:**\n%s\n\nI'll also let our manager at %s know you're expecting a call.\n\nIs there anything else you'd like to arrange?", r.manager.Phone, r.manager.BusinessName),
		QuickReplies: quickReplies,
	}
}

func (r *responder) thankYou() reply {
	quickReplies := []common.QuickReply{
		{Text: "Book an Appointment", Action: ActionBookNow},
		{Text: "Claim Welcome Offer", Action: ActionClaimOffer},
		{Text: "Call the Spa", Action: ActionCallSpa},
	}

	if tpl, ok := r.custom("thankYou"); ok {
		out := reply{Content: tpl.Content, QuickReplies: tpl.QuickReplies}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      "You're most welcome! 🌼\n\nWhenever you're ready for a little indulgence, I'm here to help you book it.",
		QuickReplies: quickReplies,
	}
}

func (r *responder) greeting() reply {
	quickReplies := []common.QuickReply{
		{Text: "Claim Welcome Offer", Action: ActionClaimOffer},
		{Text: "Services & Pricing", Action: ActionServicesPricing},
		{Text: "Book an Appointment", Action: ActionBookNow},
		{Text: "Call the Spa", Action: ActionCallSpa},
	}

	if tpl, ok := r.custom("greeting"); ok {
		out := reply{Content: tpl.Content, QuickReplies: tpl.QuickReplies}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      "Hello there! 👋 Welcome to our spa sanctuary.\n\nI can help you:\n• Claim our welcome offer\n• Explore services & pricing\n• Reserve your perfect time\n• Get directions or speak with our manager\n\nWhat would you like to do first?",
		QuickReplies: quickReplies,
	}
}

func (r *responder) fallback(message string) reply {
	quickReplies := []common.QuickReply{
		{Text: "Claim Welcome Offer", Action: ActionClaimOffer},
		{Text: "Services & Pricing", Action: ActionServicesPricing},
		{Text: "Book an Appointment", Action: ActionBookNow},
		{Text: "Call the Spa", Action: ActionCallSpa},
	}

	if tpl, ok := r.custom("default"); ok {
		out := reply{
			Content:      renderTemplate(tpl.Content, map[string]string{"message": message}),
			QuickReplies: tpl.QuickReplies,
		}
		if len(out.QuickReplies) == 0 {
			out.QuickReplies = quickReplies
		}
		return out
	}

	return reply{
		Content:      fmt.Sprintf("I hear you asking: %q\n\nI'm here to help with anything spa-related—whether it's picking a treatment, reserving your spot, understanding pricing, or speaking with our manager.\n\nLet me know what you need or choose a quick option below to continue.", message),
		QuickReplies: quickReplies,
	}
}
