package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/app/observability/metrics"
	"github.com/wanderplan/agent-service/internal/api/booking"
	"github.com/wanderplan/agent-service/internal/api/llmclient"
	"github.com/wanderplan/agent-service/internal/api/policy"
	"github.com/wanderplan/agent-service/internal/api/rag"
	"github.com/wanderplan/agent-service/internal/api/websearch"
	"github.com/wanderplan/agent-service/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service is the orchestration layer: one entry point for full plan
// generation and one for the conversational surface.
type Service interface {
	GeneratePlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error)
	HandleChat(ctx context.Context, req *types.ChatRequest) *types.ChatResponse
}

type ServiceImpl struct {
	logger   *slog.Logger
	bookings booking.Repository
	rag      rag.Service
	search   websearch.Service
	policies policy.Service
	llm      *llmclient.AIClient
}

func NewServiceImpl(bookings booking.Repository, ragService rag.Service, search websearch.Service, policies policy.Service, llm *llmclient.AIClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		bookings: bookings,
		rag:      ragService,
		search:   search,
		policies: policies,
		llm:      llm,
	}
}

// GeneratePlan runs the full planning workflow for one booking:
//
//  1. fetch the booking (the only step whose failure aborts the request)
//  2. fetch recent booking history for context
//  3. retrieve similar past trips
//  4. run the combined web search
//  5. generate the itinerary (model or fallback)
//  6. format the response
//  7. best-effort write-back to the retrieval index and booking store
func (s *ServiceImpl) GeneratePlan(ctx context.Context, req *types.PlanRequest) (*types.PlanResponse, error) {
	ctx, span := otel.Tracer("AgentService").Start(ctx, "GeneratePlan", trace.WithAttributes(
		attribute.Int64("booking.id", req.BookingID),
		attribute.Int64("user.id", req.UserID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.Get().PlanRequestsTotal.Add(ctx, 1)
		metrics.Get().PlanDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	l := s.logger.With(slog.String("method", "GeneratePlan"), slog.Int64("booking_id", req.BookingID))
	l.InfoContext(ctx, "Starting plan generation")

	prefs := req.Preferences
	prefs.Normalize()

	bookingData, err := s.bookings.GetBookingDetails(ctx, req.BookingID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch booking", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}
	destination := bookingData.Destination()
	l.InfoContext(ctx, "Booking fetched", slog.String("destination", destination))

	history, err := s.bookings.GetUserBookingHistory(ctx, req.UserID, 3)
	if err != nil {
		// History only enriches the context, carry on without it.
		l.WarnContext(ctx, "Could not fetch booking history", slog.Any("error", err))
		history = nil
	}

	ragResult := s.rag.RetrieveSimilarTrips(ctx, destination, bookingData.PartyType, prefs.Interests)
	l.InfoContext(ctx, "Retrieval step completed",
		slog.Int("similar_trips", len(ragResult.SimilarTrips)),
		slog.Float64("confidence", ragResult.Confidence),
	)

	dates := types.PlanDates{CheckIn: bookingData.CheckIn, CheckOut: bookingData.CheckOut}
	searchResults := s.search.SearchCombined(ctx, destination, dates, prefs.DietaryRestrictions, prefs.Interests)
	l.InfoContext(ctx, "Web search step completed",
		slog.Int("pois", len(searchResults.POIs)),
		slog.Int("restaurants", len(searchResults.Restaurants)),
	)

	sc := &types.SearchContext{
		Booking:        bookingData,
		Preferences:    prefs,
		Query:          req.Query,
		SearchResults:  searchResults,
		RAG:            ragResult,
		BookingHistory: history,
	}

	itinerary, err := s.llm.GenerateItinerary(ctx, sc)
	if err != nil {
		// GenerateItinerary degrades to the fallback plan internally, an
		// error here would be a programming mistake.
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to generate itinerary: %w", err)
	}

	resp := &types.PlanResponse{
		BookingID:      req.BookingID,
		Destination:    destination,
		Dates:          dates,
		Itinerary:      itinerary.Itinerary,
		Activities:     itinerary.Activities,
		Restaurants:    itinerary.Restaurants,
		PackingList:    itinerary.PackingList,
		LocalTips:      itinerary.LocalTips,
		WeatherSummary: itinerary.WeatherSummary,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if resp.WeatherSummary == "" {
		resp.WeatherSummary = "Check weather forecast before departure"
	}

	if err := s.rag.AddGeneratedItinerary(ctx, req.BookingID, destination, itinerary); err != nil {
		l.WarnContext(ctx, "Could not store itinerary for retrieval", slog.Any("error", err))
	}
	if _, err := s.bookings.SaveItinerary(ctx, req.BookingID, req.UserID, itinerary); err != nil {
		l.WarnContext(ctx, "Could not save itinerary", slog.Any("error", err))
	}

	l.InfoContext(ctx, "Plan generation completed", slog.Duration("took", time.Since(start)))
	span.SetStatus(codes.Ok, "Plan generated")
	return resp, nil
}
