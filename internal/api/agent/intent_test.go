package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		hasBookingID bool
		want         Intent
	}{
		{"booking list", "What are my bookings?", false, IntentBookings},
		{"reservation wording", "Show me my reservation please", false, IntentBookings},
		{"upcoming trips", "Any upcoming trips on my account?", false, IntentBookings},
		{"plan with booking id", "Plan my trip", true, IntentPlan},
		{"plan without booking id", "Can you plan an itinerary for me?", false, IntentClarify},
		{"things to do with id", "What are some things to do there?", true, IntentPlan},
		{"booking and plan with id", "Plan an itinerary for my booking", true, IntentPlan},
		{"booking and plan without id", "Plan an itinerary for my booking", false, IntentBookings},
		{"policy question", "What is the cancellation policy?", false, IntentPolicy},
		{"refund question", "How do refunds work?", false, IntentPolicy},
		{"pets question", "Are pets allowed at the property?", false, IntentPolicy},
		{"policy overruled by booking", "What is the refund policy for my booking?", false, IntentBookings},
		{"greeting", "Hello there!", false, IntentGeneral},
		{"small talk", "What's the best month to visit Texas?", false, IntentGeneral},
		{"booking id alone is not a plan", "Thanks!", true, IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.message, tt.hasBookingID))
		})
	}
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "general", IntentGeneral.String())
	assert.Equal(t, "bookings", IntentBookings.String())
	assert.Equal(t, "plan", IntentPlan.String())
	assert.Equal(t, "clarify", IntentClarify.String())
	assert.Equal(t, "policy", IntentPolicy.String())
}
