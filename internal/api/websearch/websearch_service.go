package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/app/observability/metrics"
	"github.com/wanderplan/agent-service/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service gathers fresh destination information from the web: attractions,
// restaurants, events and weather.
type Service interface {
	SearchCombined(ctx context.Context, location string, dates types.PlanDates, dietary, interests []string) *types.CombinedSearchResults
	SearchWeather(ctx context.Context, location string, dates types.PlanDates) *types.WeatherInfo
}

type ServiceImpl struct {
	logger      *slog.Logger
	client      *TavilyClient
	maxResults  int
	searchDepth string
	cache       *cache.Cache
}

func NewServiceImpl(client *TavilyClient, maxResults int, searchDepth string, cacheDuration time.Duration, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		client:      client,
		maxResults:  maxResults,
		searchDepth: searchDepth,
		cache:       cache.New(cacheDuration, 2*cacheDuration),
	}
}

// SearchCombined answers attractions, events, restaurants and weather for a
// destination with a single search call. Results are cached per location and
// date range. Any failure falls back to static recommendations, so callers
// always get usable data.
func (s *ServiceImpl) SearchCombined(ctx context.Context, location string, dates types.PlanDates, dietary, interests []string) *types.CombinedSearchResults {
	ctx, span := otel.Tracer("WebSearchService").Start(ctx, "SearchCombined", trace.WithAttributes(
		attribute.String("location", location),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SearchCombined"))

	cacheKey := fmt.Sprintf("%s|%s|%s", location, dates.CheckIn, dates.CheckOut)
	if cached, found := s.cache.Get(cacheKey); found {
		l.DebugContext(ctx, "Web search cache hit", slog.String("location", location))
		return cached.(*types.CombinedSearchResults)
	}

	if s.client == nil || !s.client.Available() {
		l.WarnContext(ctx, "Web search client not available, using fallback data")
		return s.fallbackData(location)
	}

	dietaryStr := strings.Join(dietary, ", ")
	interestsStr := "popular attractions"
	if len(interests) > 0 {
		interestsStr = strings.Join(interests, ", ")
	}

	// One combined query instead of four separate calls
	query := fmt.Sprintf(`For %s travel from %s to %s:
1. Top attractions and points of interest (%s)
2. Local events and festivals
3. %s restaurants if specified, otherwise popular restaurants
4. Weather forecast`,
		location, dates.CheckIn, dates.CheckOut, interestsStr, dietaryStr)

	l.InfoContext(ctx, "Running web search", slog.String("location", location))
	metrics.Get().WebSearchRequestsTotal.Add(ctx, 1)

	resp, err := s.client.Search(ctx, query, s.searchDepth, s.maxResults)
	if err != nil {
		l.ErrorContext(ctx, "Web search failed, using fallback data", slog.Any("error", err))
		span.RecordError(err)
		return s.fallbackData(location)
	}

	results := classifyResults(resp.Results)
	s.cache.Set(cacheKey, results, cache.DefaultExpiration)

	l.InfoContext(ctx, "Web search completed",
		slog.Int("pois", len(results.POIs)),
		slog.Int("restaurants", len(results.Restaurants)),
		slog.Int("events", len(results.Events)),
	)
	span.SetStatus(codes.Ok, "Web search completed")
	return results
}

// SearchWeather runs a single-purpose forecast query. Returns nil when the
// client is unconfigured or the search fails, callers treat nil as unknown
// weather.
func (s *ServiceImpl) SearchWeather(ctx context.Context, location string, dates types.PlanDates) *types.WeatherInfo {
	ctx, span := otel.Tracer("WebSearchService").Start(ctx, "SearchWeather", trace.WithAttributes(
		attribute.String("location", location),
	))
	defer span.End()

	if s.client == nil || !s.client.Available() {
		return nil
	}

	query := fmt.Sprintf("weather forecast %s %s to %s", location, dates.CheckIn, dates.CheckOut)
	metrics.Get().WebSearchRequestsTotal.Add(ctx, 1)

	resp, err := s.client.Search(ctx, query, "", 2)
	if err != nil {
		s.logger.ErrorContext(ctx, "Weather search failed", slog.Any("error", err))
		span.RecordError(err)
		return nil
	}
	if len(resp.Results) == 0 {
		return nil
	}

	summary := resp.Results[0].Content
	if len(summary) > 300 {
		summary = summary[:300]
	}

	span.SetStatus(codes.Ok, "Weather search completed")
	return &types.WeatherInfo{
		Summary: summary,
		Source:  resp.Results[0].URL,
	}
}

// classifyResults buckets raw search hits by keyword. Weather keywords win
// over restaurant keywords, which win over event keywords; anything else is
// treated as an attraction. Buckets are capped at 10 POIs, 5 events and 8
// restaurants.
func classifyResults(raw []TavilyResult) *types.CombinedSearchResults {
	out := &types.CombinedSearchResults{
		POIs:        []types.WebResult{},
		Events:      []types.WebResult{},
		Restaurants: []types.WebResult{},
	}

	for _, item := range raw {
		content := strings.ToLower(item.Content)
		desc := item.Content
		if len(desc) > 200 {
			desc = desc[:200]
		}
		entry := types.WebResult{
			Name:        item.Title,
			Description: desc,
			Source:      item.URL,
		}

		switch {
		case containsAny(content, "weather", "forecast", "temperature"):
			out.Weather = &types.WeatherInfo{
				Summary: desc,
				Source:  item.URL,
			}
		case containsAny(content, "restaurant", "food", "dining"):
			out.Restaurants = append(out.Restaurants, entry)
		case containsAny(content, "event", "festival", "concert"):
			out.Events = append(out.Events, entry)
		default:
			out.POIs = append(out.POIs, entry)
		}
	}

	if len(out.POIs) > 10 {
		out.POIs = out.POIs[:10]
	}
	if len(out.Events) > 5 {
		out.Events = out.Events[:5]
	}
	if len(out.Restaurants) > 8 {
		out.Restaurants = out.Restaurants[:8]
	}

	return out
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// fallbackData returns static recommendations for when the search API is
// unreachable or unconfigured.
func (s *ServiceImpl) fallbackData(location string) *types.CombinedSearchResults {
	s.logger.Info("Using fallback search data", slog.String("location", location))

	return &types.CombinedSearchResults{
		POIs: []types.WebResult{
			{
				Name:        fmt.Sprintf("%s City Center", location),
				Description: "Explore the heart of the city with shops, cafes, and historic architecture",
				Tags:        []string{"culture", "walking"},
			},
			{
				Name:        fmt.Sprintf("%s Museum", location),
				Description: "Learn about local history and culture",
				Tags:        []string{"culture", "indoor"},
			},
			{
				Name:        "Local Park",
				Description: "Enjoy outdoor activities and nature",
				Tags:        []string{"nature", "outdoor", "family-friendly"},
			},
			{
				Name:        "Waterfront Area",
				Description: "Scenic views and relaxing atmosphere",
				Tags:        []string{"scenic", "relaxation"},
			},
		},
		Events: []types.WebResult{
			{
				Name:        "Local Farmers Market",
				Description: "Weekend market with local produce and crafts",
				Tags:        []string{"food", "local"},
			},
		},
		Restaurants: []types.WebResult{
			{
				Name:        "Local Cuisine Restaurant",
				Description: "Authentic local dishes",
				Cuisine:     "Local",
				PriceTier:   "$$",
			},
			{
				Name:        "International Cafe",
				Description: "Diverse menu with vegetarian options",
				Cuisine:     "International",
				PriceTier:   "$",
			},
			{
				Name:        "Fine Dining",
				Description: "Upscale dining experience",
				Cuisine:     "Contemporary",
				PriceTier:   "$$$",
			},
		},
		Weather: &types.WeatherInfo{
			Summary: fmt.Sprintf("Typical weather for %s during this season. Please check a weather service closer to your travel dates.", location),
			Advice:  "Pack layers and check forecast before departure",
		},
	}
}
