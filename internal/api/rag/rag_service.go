package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/internal/api/embeddings"
	"github.com/wanderplan/agent-service/internal/api/vectorstore"
	"github.com/wanderplan/agent-service/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service retrieves previously generated itineraries that resemble the trip
// being planned, and feeds finished plans back into the index.
type Service interface {
	RetrieveSimilarTrips(ctx context.Context, location, partyType string, interests []string) *types.RAGResult
	AddGeneratedItinerary(ctx context.Context, bookingID int64, location string, itinerary *types.GeneratedItinerary) error
}

type ServiceImpl struct {
	logger        *slog.Logger
	embedder      embeddings.Provider
	store         vectorstore.Repository
	minCorpusSize int
	topK          int
}

func NewServiceImpl(store vectorstore.Repository, embedder embeddings.Provider, minCorpusSize, topK int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		embedder:      embedder,
		store:         store,
		minCorpusSize: minCorpusSize,
		topK:          topK,
	}
}

// RetrieveSimilarTrips searches the itinerary collection for trips close to
// the given location, party type and interests. Retrieval is advisory, so
// every failure path returns an empty result instead of an error. The search
// is skipped entirely while the corpus is too small to give useful neighbors.
func (s *ServiceImpl) RetrieveSimilarTrips(ctx context.Context, location, partyType string, interests []string) *types.RAGResult {
	ctx, span := otel.Tracer("RAGService").Start(ctx, "RetrieveSimilarTrips", trace.WithAttributes(
		attribute.String("location", location),
		attribute.String("party_type", partyType),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "RetrieveSimilarTrips"))
	empty := &types.RAGResult{SimilarTrips: []types.VectorMatch{}, Confidence: 0, Count: 0}

	count, err := s.store.Count(ctx, vectorstore.CollectionItineraries)
	if err != nil {
		l.ErrorContext(ctx, "Failed to count itinerary corpus", slog.Any("error", err))
		span.RecordError(err)
		return empty
	}

	if count < s.minCorpusSize {
		l.InfoContext(ctx, "Skipping retrieval, corpus too small",
			slog.Int("count", count), slog.Int("required", s.minCorpusSize))
		return &types.RAGResult{SimilarTrips: []types.VectorMatch{}, Confidence: 0, Count: count}
	}

	queryText := fmt.Sprintf("Trip to %s for %s", location, partyType)
	if len(interests) > 0 {
		queryText += fmt.Sprintf(" interested in %s", strings.Join(interests, ", "))
	}

	l.DebugContext(ctx, "Retrieval query built", slog.String("query", queryText))

	queryEmbedding, err := s.embedder.EmbedText(ctx, queryText)
	if err != nil {
		l.ErrorContext(ctx, "Failed to embed retrieval query", slog.Any("error", err))
		span.RecordError(err)
		return empty
	}

	matches, err := s.store.SearchSimilar(ctx, vectorstore.CollectionItineraries, queryEmbedding, s.topK)
	if err != nil {
		l.ErrorContext(ctx, "Similarity search failed", slog.Any("error", err))
		span.RecordError(err)
		return empty
	}

	confidence := 0.0
	if len(matches) > 0 {
		var total float64
		for _, m := range matches {
			total += m.Distance
		}
		confidence = 1.0 - total/float64(len(matches))
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
	}

	l.InfoContext(ctx, "Retrieval completed",
		slog.Int("results", len(matches)), slog.Float64("confidence", confidence))
	span.SetStatus(codes.Ok, "Retrieval completed")

	return &types.RAGResult{
		SimilarTrips: matches,
		Confidence:   confidence,
		Count:        count,
	}
}

// AddGeneratedItinerary indexes a freshly generated plan so later requests
// for similar trips can retrieve it.
func (s *ServiceImpl) AddGeneratedItinerary(ctx context.Context, bookingID int64, location string, itinerary *types.GeneratedItinerary) error {
	ctx, span := otel.Tracer("RAGService").Start(ctx, "AddGeneratedItinerary", trace.WithAttributes(
		attribute.Int64("booking.id", bookingID),
		attribute.String("location", location),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "AddGeneratedItinerary"))

	itineraryJSON, err := json.Marshal(itinerary)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal itinerary for indexing: %w", err)
	}
	summary := string(itineraryJSON)
	if len(summary) > 500 {
		summary = summary[:500]
	}
	docText := fmt.Sprintf("Trip to %s\nItinerary: %s", location, summary)

	embedding, err := s.embedder.EmbedText(ctx, docText)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to embed itinerary document: %w", err)
	}

	doc := types.VectorDocument{
		ID:        fmt.Sprintf("booking_%d", bookingID),
		Embedding: embedding,
		Document:  docText,
		Metadata: map[string]string{
			"location":   location,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		},
	}

	if err := s.store.Upsert(ctx, vectorstore.CollectionItineraries, []types.VectorDocument{doc}); err != nil {
		l.ErrorContext(ctx, "Failed to index generated itinerary", slog.Any("error", err))
		span.RecordError(err)
		return fmt.Errorf("failed to index generated itinerary: %w", err)
	}

	l.InfoContext(ctx, "Stored generated itinerary for retrieval", slog.Int64("booking_id", bookingID))
	span.SetStatus(codes.Ok, "Itinerary indexed")
	return nil
}
