package types

// WebResult is one classified snippet from the combined web search.
type WebResult struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Source      string   `json:"source,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	PriceTier   string   `json:"price_tier,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// WeatherInfo carries the single weather snippet (or the generic fallback).
type WeatherInfo struct {
	Summary string `json:"summary"`
	Source  string `json:"source,omitempty"`
	Advice  string `json:"advice,omitempty"`
}

// CombinedSearchResults is the structured output of one combined web
// search call, bucketed by keyword classification.
type CombinedSearchResults struct {
	POIs        []WebResult  `json:"pois"`
	Events      []WebResult  `json:"events"`
	Restaurants []WebResult  `json:"restaurants"`
	Weather     *WeatherInfo `json:"weather,omitempty"`
}

// RAGResult is the outcome of a similar-trip retrieval. Confidence is
// clamped to [0,1]; Count is the total corpus size at query time.
type RAGResult struct {
	SimilarTrips []VectorMatch `json:"similar_trips"`
	Confidence   float64       `json:"confidence"`
	Count        int           `json:"count"`
}

// SearchContext aggregates everything the prompt builder needs for one
// plan request. It lives only for the duration of that request.
type SearchContext struct {
	Booking        *Booking               `json:"booking"`
	Preferences    Preferences            `json:"preferences"`
	Query          string                 `json:"query,omitempty"`
	SearchResults  *CombinedSearchResults `json:"search_results,omitempty"`
	RAG            *RAGResult             `json:"rag_results,omitempty"`
	BookingHistory []BookingSummary       `json:"booking_history,omitempty"`
}
