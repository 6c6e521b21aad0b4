package websearch

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderplan/agent-service/internal/types"
)

func TestClassifyResults_Buckets(t *testing.T) {
	raw := []TavilyResult{
		{Title: "State Capitol", Content: "Historic landmark with guided tours", URL: "https://example.com/capitol"},
		{Title: "Best BBQ", Content: "Top restaurant for brisket and dining", URL: "https://example.com/bbq"},
		{Title: "Spring Festival", Content: "Annual music festival downtown", URL: "https://example.com/fest"},
		{Title: "Forecast", Content: "Weather this week: sunny, temperature around 80F", URL: "https://example.com/wx"},
	}

	out := classifyResults(raw)

	require.Len(t, out.POIs, 1)
	assert.Equal(t, "State Capitol", out.POIs[0].Name)
	require.Len(t, out.Restaurants, 1)
	assert.Equal(t, "Best BBQ", out.Restaurants[0].Name)
	require.Len(t, out.Events, 1)
	assert.Equal(t, "Spring Festival", out.Events[0].Name)
	require.NotNil(t, out.Weather)
	assert.Contains(t, out.Weather.Summary, "sunny")
	assert.Equal(t, "https://example.com/wx", out.Weather.Source)
}

func TestClassifyResults_WeatherWinsOverFood(t *testing.T) {
	// Weather keywords take precedence even when food words appear too.
	raw := []TavilyResult{
		{Title: "Mixed", Content: "Great food scene, but check the weather forecast first"},
	}

	out := classifyResults(raw)

	assert.NotNil(t, out.Weather)
	assert.Empty(t, out.Restaurants)
}

func TestClassifyResults_LastWeatherHitWins(t *testing.T) {
	raw := []TavilyResult{
		{Title: "Old", Content: "weather last month", URL: "https://example.com/old"},
		{Title: "New", Content: "forecast for next week", URL: "https://example.com/new"},
	}

	out := classifyResults(raw)

	require.NotNil(t, out.Weather)
	assert.Equal(t, "https://example.com/new", out.Weather.Source)
}

func TestClassifyResults_CapsAndTruncation(t *testing.T) {
	long := strings.Repeat("a", 300)
	var raw []TavilyResult
	for i := 0; i < 12; i++ {
		raw = append(raw, TavilyResult{Title: "POI", Content: long})
	}
	for i := 0; i < 10; i++ {
		raw = append(raw, TavilyResult{Title: "Eat", Content: "restaurant " + long})
	}
	for i := 0; i < 7; i++ {
		raw = append(raw, TavilyResult{Title: "Fest", Content: "festival " + long})
	}

	out := classifyResults(raw)

	assert.Len(t, out.POIs, 10)
	assert.Len(t, out.Restaurants, 8)
	assert.Len(t, out.Events, 5)
	assert.Len(t, out.POIs[0].Description, 200)
}

func TestSearchCombined_FallbackWhenUnconfigured(t *testing.T) {
	logger := slog.Default()
	svc := NewServiceImpl(nil, 10, "basic", time.Minute, logger)
	dates := types.PlanDates{CheckIn: "2026-03-10", CheckOut: "2026-03-13"}

	out := svc.SearchCombined(context.Background(), "Austin, TX", dates, nil, nil)

	require.NotNil(t, out)
	require.NotEmpty(t, out.POIs)
	assert.Equal(t, "Austin, TX City Center", out.POIs[0].Name)
	assert.NotEmpty(t, out.Restaurants)
	assert.NotEmpty(t, out.Events)
	require.NotNil(t, out.Weather)
	assert.Contains(t, out.Weather.Summary, "Austin, TX")
	assert.Equal(t, "Pack layers and check forecast before departure", out.Weather.Advice)
}

func TestSearchCombined_FallbackWithKeylessClient(t *testing.T) {
	logger := slog.Default()
	client := NewTavilyClient("", 5*time.Second, logger)
	svc := NewServiceImpl(client, 10, "basic", time.Minute, logger)
	dates := types.PlanDates{CheckIn: "2026-03-10", CheckOut: "2026-03-13"}

	out := svc.SearchCombined(context.Background(), "Austin, TX", dates, nil, nil)

	require.NotNil(t, out)
	assert.NotEmpty(t, out.POIs)
}

func TestSearchWeather_NilWhenUnconfigured(t *testing.T) {
	logger := slog.Default()
	svc := NewServiceImpl(nil, 10, "basic", time.Minute, logger)
	dates := types.PlanDates{CheckIn: "2026-03-10", CheckOut: "2026-03-13"}

	assert.Nil(t, svc.SearchWeather(context.Background(), "Austin, TX", dates))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("great food here", "restaurant", "food"))
	assert.False(t, containsAny("great views here", "restaurant", "food"))
}
