package types

// TimeBlock is one morning/afternoon/evening slot of a day plan.
type TimeBlock struct {
	Time        string `json:"time" example:"9:00 AM"`
	Activity    string `json:"activity"`
	Description string `json:"description,omitempty"`
}

// DayPlan is a single day of the generated itinerary. DayNumber is
// 1-indexed and contiguous across the itinerary.
type DayPlan struct {
	Date      string     `json:"date"`
	DayNumber int        `json:"day_number"`
	Morning   *TimeBlock `json:"morning,omitempty"`
	Afternoon *TimeBlock `json:"afternoon,omitempty"`
	Evening   *TimeBlock `json:"evening,omitempty"`
}

// ActivityCard is a standalone activity recommendation.
type ActivityCard struct {
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Duration      string          `json:"duration,omitempty" example:"2-3 hours"`
	PriceTier     string          `json:"price_tier,omitempty" example:"$$"` // free, $, $$, $$$, $$$$
	Tags          []string        `json:"tags,omitempty"`
	Accessibility map[string]bool `json:"accessibility,omitempty"`
}

// Restaurant is a dining recommendation.
type Restaurant struct {
	Name        string   `json:"name"`
	Cuisine     string   `json:"cuisine,omitempty"`
	DietaryTags []string `json:"dietary_tags,omitempty"`
	PriceTier   string   `json:"price_tier,omitempty"`
	Description string   `json:"description,omitempty"`
}

// GeneratedItinerary is the structured payload produced by the model (or
// the deterministic fallback) for one plan request.
type GeneratedItinerary struct {
	Itinerary      []DayPlan      `json:"itinerary"`
	Activities     []ActivityCard `json:"activities"`
	Restaurants    []Restaurant   `json:"restaurants"`
	PackingList    []string       `json:"packing_list"`
	LocalTips      []string       `json:"local_tips"`
	WeatherSummary string         `json:"weather_summary"`
}
