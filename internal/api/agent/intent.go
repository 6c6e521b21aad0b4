package agent

import "strings"

// Intent is the classified purpose of a conversational message.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentBookings
	IntentPlan
	IntentClarify
	IntentPolicy
)

func (i Intent) String() string {
	switch i {
	case IntentBookings:
		return "bookings"
	case IntentPlan:
		return "plan"
	case IntentClarify:
		return "clarify"
	case IntentPolicy:
		return "policy"
	default:
		return "general"
	}
}

var (
	bookingKeywords = []string{"booking", "reservation", "my trips", "my stays", "upcoming trip"}
	planKeywords    = []string{"plan", "itinerary", "schedule", "things to do", "activities", "recommend"}
	policyKeywords  = []string{"policy", "policies", "cancellation", "refund", "deposit", "house rules", "pets allowed", "smoking"}
)

// keywordMatches is the per-message evidence the rule table evaluates.
type keywordMatches struct {
	booking      bool
	plan         bool
	policy       bool
	hasBookingID bool
}

// intentRule maps a matched condition to an intent. Rules are evaluated in
// order, first hit wins.
type intentRule struct {
	name    string
	applies func(m keywordMatches) bool
	intent  Intent
}

// The ordered rule table. Booking and plan keywords take precedence over
// policy keywords, so a message like "cancel my booking" never routes to
// policy search. A message matching both booking and plan resolves to plan
// only when a booking id was supplied.
var intentRules = []intentRule{
	{
		name:    "booking and plan keywords with booking id",
		applies: func(m keywordMatches) bool { return m.booking && m.plan && m.hasBookingID },
		intent:  IntentPlan,
	},
	{
		name:    "booking and plan keywords without booking id",
		applies: func(m keywordMatches) bool { return m.booking && m.plan },
		intent:  IntentBookings,
	},
	{
		name:    "plan keywords with booking id",
		applies: func(m keywordMatches) bool { return m.plan && m.hasBookingID },
		intent:  IntentPlan,
	},
	{
		name:    "plan keywords without booking id",
		applies: func(m keywordMatches) bool { return m.plan },
		intent:  IntentClarify,
	},
	{
		name:    "booking keywords",
		applies: func(m keywordMatches) bool { return m.booking },
		intent:  IntentBookings,
	},
	{
		name:    "policy keywords",
		applies: func(m keywordMatches) bool { return m.policy && !m.booking && !m.plan },
		intent:  IntentPolicy,
	},
}

// ClassifyIntent resolves a message to exactly one intent via the rule
// table. No rule matching means general chat.
func ClassifyIntent(message string, hasBookingID bool) Intent {
	lower := strings.ToLower(message)
	m := keywordMatches{
		booking:      containsAnyKeyword(lower, bookingKeywords),
		plan:         containsAnyKeyword(lower, planKeywords),
		policy:       containsAnyKeyword(lower, policyKeywords),
		hasBookingID: hasBookingID,
	}

	for _, rule := range intentRules {
		if rule.applies(m) {
			return rule.intent
		}
	}
	return IntentGeneral
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
