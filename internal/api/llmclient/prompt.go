package llmclient

import (
	"fmt"
	"strings"
	"time"

	"github.com/wanderplan/agent-service/internal/types"
)

const dateLayout = "2006-01-02"

// tripDays returns the trip length in days. Unparseable dates fall back to a
// three day trip so prompt construction never fails.
func tripDays(checkIn, checkOut string) int {
	start, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return 3
	}
	end, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return 3
	}
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return 3
	}
	return days
}

// BuildPrompt assembles the full itinerary generation prompt from booking
// details, traveler preferences, web search results and the user query.
func BuildPrompt(sc *types.SearchContext) string {
	booking := sc.Booking
	prefs := sc.Preferences

	destination := booking.Destination()
	numDays := tripDays(booking.CheckIn, booking.CheckOut)

	dietaryStr := "No specific dietary restrictions"
	if len(prefs.DietaryRestrictions) > 0 {
		dietaryStr = strings.Join(prefs.DietaryRestrictions, ", ")
	}
	interestsStr := "general sightseeing"
	if len(prefs.Interests) > 0 {
		interestsStr = strings.Join(prefs.Interests, ", ")
	}
	dietaryTag := "all"
	if len(prefs.DietaryRestrictions) > 0 {
		dietaryTag = dietaryStr
	}

	userQuery := sc.Query
	if userQuery == "" {
		userQuery = "Create a comprehensive travel plan"
	}

	var pois, restaurants, events []types.WebResult
	weatherSummary := "Check weather forecast closer to travel dates"
	if sc.SearchResults != nil {
		pois = sc.SearchResults.POIs
		restaurants = sc.SearchResults.Restaurants
		events = sc.SearchResults.Events
		if sc.SearchResults.Weather != nil && sc.SearchResults.Weather.Summary != "" {
			weatherSummary = sc.SearchResults.Weather.Summary
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert travel planner creating a personalized itinerary.

**TRIP DETAILS:**
- Destination: %s
- Dates: %s to %s (%d days)
- Party: %s with %d guests
- Budget: %s
- Interests: %s
- Dietary: %s

**USER REQUEST:**
%s

**AVAILABLE ATTRACTIONS:**
%s

**LOCAL RESTAURANTS:**
%s

**LOCAL EVENTS:**
%s

**WEATHER INFO:**
%s

**YOUR TASK:**
Create a detailed %d-day itinerary with:
1. Daily schedule (morning, afternoon, evening activities)
2. Activity recommendations with practical details
3. Restaurant suggestions filtered by dietary needs
4. Packing checklist based on weather and activities
5. Local tips for travelers

`,
		destination,
		booking.CheckIn, booking.CheckOut, numDays,
		booking.PartyType, booking.NumberOfGuests,
		prefs.Budget,
		interestsStr,
		dietaryStr,
		userQuery,
		formatResults(pois, 10, "Popular local attractions", "Local point of interest"),
		formatResults(restaurants, 8, "Local dining options available", "Local restaurant"),
		formatResults(events, 5, "Check local event calendars", "Local event"),
		weatherSummary,
		numDays,
	)

	fmt.Fprintf(&b, `**OUTPUT FORMAT (STRICT JSON):**
Return ONLY valid JSON with this exact structure:
{
  "itinerary": [
    {
      "day_number": 1,
      "date": "%s",
      "morning": {
        "time": "9:00 AM",
        "activity": "Activity name",
        "description": "Brief description"
      },
      "afternoon": {
        "time": "2:00 PM",
        "activity": "Activity name",
        "description": "Brief description"
      },
      "evening": {
        "time": "7:00 PM",
        "activity": "Activity name",
        "description": "Brief description"
      }
    }
  ],
  "activities": [
    {
      "title": "Activity name",
      "description": "What to expect",
      "duration": "2-3 hours",
      "price_tier": "free|$|$$|$$$",
      "tags": ["culture", "outdoor"],
      "accessibility": {"wheelchair": true, "child_friendly": true}
    }
  ],
  "restaurants": [
    {
      "name": "Restaurant name",
      "cuisine": "Type",
      "dietary_tags": ["%s"],
      "price_tier": "$|$$|$$$",
      "description": "Why recommended"
    }
  ],
  "packing_list": [
    "Item 1 (reason)",
    "Item 2 (reason)"
  ],
  "local_tips": [
    "Tip 1",
    "Tip 2"
  ],
  "weather_summary": "Brief weather overview"
}

**IMPORTANT RULES:**
- ONLY restaurants matching dietary restrictions: %s
- Activities suitable for %s with %d people
- Budget-appropriate suggestions for %s budget
- Include accessibility info if mobility needs specified
- Return ONLY valid JSON, no extra text
- Include realistic time estimates
- Consider weather in recommendations
`,
		booking.CheckIn,
		dietaryTag,
		dietaryStr,
		booking.PartyType, booking.NumberOfGuests,
		prefs.Budget,
	)

	return b.String()
}

// formatResults renders a numbered list of search results for the prompt,
// truncating long descriptions. An empty list yields the placeholder.
func formatResults(results []types.WebResult, limit int, placeholder, defaultDesc string) string {
	if len(results) == 0 {
		return placeholder
	}
	if len(results) > limit {
		results = results[:limit]
	}

	lines := make([]string, 0, len(results))
	for i, r := range results {
		desc := r.Description
		if desc == "" {
			desc = defaultDesc
		}
		if len(desc) > 100 {
			desc = desc[:100]
		}
		lines = append(lines, fmt.Sprintf("%d. %s: %s", i+1, r.Name, desc))
	}
	return strings.Join(lines, "\n")
}
