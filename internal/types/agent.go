package types

// Preferences are per-request travel preferences; never persisted on their
// own. Zero values mean "no preference" except Budget which defaults to
// medium at normalization time.
type Preferences struct {
	Budget              string          `json:"budget,omitempty" example:"medium"` // low, medium, high, luxury
	Interests           []string        `json:"interests,omitempty"`
	DietaryRestrictions []string        `json:"dietary_restrictions,omitempty"`
	MobilityNeeds       map[string]bool `json:"mobility_needs,omitempty"`
}

// Normalize fills preference defaults in place.
func (p *Preferences) Normalize() {
	if p.Budget == "" {
		p.Budget = "medium"
	}
}

// PlanRequest is the inbound payload for plan generation. Secret is the
// shared token proving the request came from the backend.
type PlanRequest struct {
	BookingID   int64       `json:"booking_id"`
	UserID      int64       `json:"user_id"`
	Query       string      `json:"query,omitempty"`
	Preferences Preferences `json:"preferences,omitempty"`
	Secret      string      `json:"secret"`
}

// PlanDates echoes the booking dates in the response.
type PlanDates struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

// PlanResponse is the complete travel plan returned to the caller.
type PlanResponse struct {
	BookingID      int64          `json:"booking_id"`
	Destination    string         `json:"destination"`
	Dates          PlanDates      `json:"dates"`
	Itinerary      []DayPlan      `json:"itinerary"`
	Activities     []ActivityCard `json:"activities"`
	Restaurants    []Restaurant   `json:"restaurants"`
	PackingList    []string       `json:"packing_list"`
	LocalTips      []string       `json:"local_tips"`
	WeatherSummary string         `json:"weather_summary"`
	GeneratedAt    string         `json:"generated_at"`
}

// ChatTurn is one message of the rolling conversation history.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the inbound payload for the conversational surface.
// BookingID is optional context for plan-style messages.
type ChatRequest struct {
	UserID              int64      `json:"user_id"`
	Message             string     `json:"message"`
	BookingID           *int64     `json:"booking_id,omitempty"`
	ConversationHistory []ChatTurn `json:"conversation_history,omitempty"`
	Secret              string     `json:"secret"`
}

// ChatResponse pairs a natural-language reply with an optional structured
// payload (booking list, generated plan, policy sources).
type ChatResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthResponse reports per-dependency status plus an aggregate.
type HealthResponse struct {
	Status    string            `json:"status"` // healthy or degraded
	Services  map[string]string `json:"services"`
	Timestamp string            `json:"timestamp"`
}
