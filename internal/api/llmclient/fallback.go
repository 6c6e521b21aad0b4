package llmclient

import (
	"fmt"
	"time"

	"github.com/wanderplan/agent-service/internal/types"
)

type dayTemplate struct {
	morning   types.TimeBlock
	afternoon types.TimeBlock
	evening   types.TimeBlock
}

var arrivalDay = dayTemplate{
	morning:   types.TimeBlock{Time: "9:00 AM", Activity: "Arrival and Check-in", Description: "Arrive at your accommodation and settle in"},
	afternoon: types.TimeBlock{Time: "2:00 PM", Activity: "Explore City Center", Description: "Take a walking tour of the main attractions"},
	evening:   types.TimeBlock{Time: "7:00 PM", Activity: "Welcome Dinner", Description: "Try local cuisine at a recommended restaurant"},
}

var rotatingDays = []dayTemplate{
	{
		morning:   types.TimeBlock{Time: "9:00 AM", Activity: "Museum Visit", Description: "Learn about local history and culture"},
		afternoon: types.TimeBlock{Time: "2:00 PM", Activity: "Neighborhood Walk", Description: "Browse local shops and landmarks at your own pace"},
		evening:   types.TimeBlock{Time: "7:00 PM", Activity: "Dinner Out", Description: "Sample a popular local restaurant"},
	},
	{
		morning:   types.TimeBlock{Time: "9:00 AM", Activity: "Outdoor Morning", Description: "Visit a park or waterfront area for fresh air"},
		afternoon: types.TimeBlock{Time: "2:00 PM", Activity: "Scenic Viewpoint", Description: "Catch the best views the area has to offer"},
		evening:   types.TimeBlock{Time: "7:00 PM", Activity: "Casual Dinner", Description: "Relaxed meal near your accommodation"},
	},
	{
		morning:   types.TimeBlock{Time: "9:00 AM", Activity: "Local Market", Description: "Browse stalls for local produce and crafts"},
		afternoon: types.TimeBlock{Time: "2:00 PM", Activity: "Free Time", Description: "Rest, revisit a favorite spot or explore on a whim"},
		evening:   types.TimeBlock{Time: "7:00 PM", Activity: "Evening Stroll and Dinner", Description: "Wind down with a walk and a leisurely dinner"},
	},
}

// FallbackItinerary produces a deterministic plan covering the whole stay for
// when the model is unavailable or returns garbage. Day one is always the
// arrival template, later days cycle through generic templates. Weather from
// the web search carries over when present.
func FallbackItinerary(sc *types.SearchContext) *types.GeneratedItinerary {
	booking := sc.Booking
	destination := booking.Destination()

	numDays := tripDays(booking.CheckIn, booking.CheckOut)
	if numDays < 1 {
		numDays = 1
	}

	checkIn, dateErr := time.Parse(dateLayout, booking.CheckIn)

	days := make([]types.DayPlan, 0, numDays)
	for i := 0; i < numDays; i++ {
		tmpl := arrivalDay
		if i > 0 {
			tmpl = rotatingDays[(i-1)%len(rotatingDays)]
		}

		date := ""
		if dateErr == nil {
			date = checkIn.AddDate(0, 0, i).Format(dateLayout)
		}

		morning := tmpl.morning
		afternoon := tmpl.afternoon
		evening := tmpl.evening
		days = append(days, types.DayPlan{
			DayNumber: i + 1,
			Date:      date,
			Morning:   &morning,
			Afternoon: &afternoon,
			Evening:   &evening,
		})
	}

	weatherSummary := "Check forecast closer to travel dates"
	if sc.SearchResults != nil && sc.SearchResults.Weather != nil && sc.SearchResults.Weather.Summary != "" {
		weatherSummary = sc.SearchResults.Weather.Summary
	}

	return &types.GeneratedItinerary{
		Itinerary: days,
		Activities: []types.ActivityCard{
			{
				Title:         fmt.Sprintf("%s City Tour", destination),
				Description:   "Explore the highlights of the city",
				Duration:      "3-4 hours",
				PriceTier:     "$$",
				Tags:          []string{"culture", "walking"},
				Accessibility: map[string]bool{"wheelchair": true, "child_friendly": true},
			},
		},
		Restaurants: []types.Restaurant{
			{
				Name:        "Local Favorite",
				Cuisine:     "Local",
				DietaryTags: []string{"all"},
				PriceTier:   "$$",
				Description: "Popular spot with locals",
			},
		},
		PackingList: []string{
			"Comfortable walking shoes",
			"Weather-appropriate clothing",
			"Sunscreen and hat",
			"Camera for photos",
			"Reusable water bottle",
		},
		LocalTips: []string{
			"Check local transportation options",
			"Book popular attractions in advance",
			"Ask locals for hidden gems",
		},
		WeatherSummary: weatherSummary,
	}
}
