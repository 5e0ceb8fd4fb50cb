package autochat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		action   string
		expected Intent
	}{
		{"talk with manager text", "I want to talk with manager please", "", IntentTalkToHuman},
		{"human keyword", "can I speak to a human", "", IntentTalkToHuman},
		{"talk with manager action", "", ActionTalkWithManager, IntentTalkToHuman},
		{"claim keyword", "I'd like to claim that", "", IntentClaimOffer},
		{"yes plus offer", "yes, the offer please", "", IntentClaimOffer},
		{"services text", "what services do you have?", "", IntentBrowseServices},
		{"pricing text", "send me the pricing", "", IntentBrowseServices},
		{"more services action", "", ActionServicesMore, IntentBrowseMore},
		{"book text", "I want to book something", "", IntentBookNow},
		{"appointment text", "need an appointment", "", IntentBookNow},
		{"location text", "where are you located?", "", IntentViewLocation},
		{"call text", "can I phone you?", "", IntentCallBusiness},
		{"thanks", "thank you so much!", "", IntentThankYou},
		{"greeting", "hello!", "", IntentGreeting},
		{"empty content", "", "", IntentGreeting},
		{"gibberish falls through", "qwerty zxcvb", "", IntentFallback},
		// An explicit quick-reply action outranks whatever the text says.
		{"action beats text", "thank you", ActionBookNow, IntentBookNow},
		{"talk action beats booking text", "book me in", ActionTalkWithManager, IntentTalkToHuman},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.content, tt.action, defaultServices, defaultTimeSlots)
			assert.Equal(t, tt.expected, c.Intent)
		})
	}
}

func TestClassify_ServiceSelection(t *testing.T) {
	c := Classify("", "service_head_massage", defaultServices, defaultTimeSlots)
	assert.Equal(t, IntentSelectService, c.Intent)
	if assert.NotNil(t, c.Service) {
		assert.Equal(t, "Head Massage", c.Service.Name)
	}

	c = Classify("the swedish massage sounds nice", "", defaultServices, defaultTimeSlots)
	assert.Equal(t, IntentSelectService, c.Intent)
	if assert.NotNil(t, c.Service) {
		assert.Equal(t, "Swedish Massage", c.Service.Name)
	}
}

func TestClassify_TimeSlotSelection(t *testing.T) {
	c := Classify("", "slot_morning", defaultServices, defaultTimeSlots)
	assert.Equal(t, IntentSelectTimeSlot, c.Intent)
	if assert.NotNil(t, c.Slot) {
		assert.Equal(t, "10:00 AM – 12:00 PM", c.Slot.Label)
	}
}

// A message naming both a booking verb and a service resolves to the
// booking flow; rule order decides.
func TestClassify_Precedence(t *testing.T) {
	c := Classify("book the head massage", "", defaultServices, defaultTimeSlots)
	assert.Equal(t, IntentBookNow, c.Intent)
}
