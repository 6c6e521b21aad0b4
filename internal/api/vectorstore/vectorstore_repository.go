package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/app/observability/metrics"
	"github.com/wanderplan/agent-service/internal/api"
	"github.com/wanderplan/agent-service/internal/types"
)

// Collections kept in the vector_documents table.
const (
	CollectionItineraries = "itineraries"
	CollectionPolicies    = "policies"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository defines persistence for embedding-indexed documents.
type Repository interface {
	Upsert(ctx context.Context, collection string, docs []types.VectorDocument) error
	SearchSimilar(ctx context.Context, collection string, embedding []float32, n int) ([]types.VectorMatch, error)
	Count(ctx context.Context, collection string) (int, error)
	DeleteBySource(ctx context.Context, collection, source string) (int64, error)
	Stats(ctx context.Context, collection string) (*types.CollectionStats, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool api.PGXPool
}

func NewRepositoryImpl(pgpool api.PGXPool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

// Upsert writes documents into a collection, replacing any existing rows with
// the same id. All rows go through one batch round trip.
func (r *RepositoryImpl) Upsert(ctx context.Context, collection string, docs []types.VectorDocument) error {
	ctx, span := otel.Tracer("VectorstoreRepo").Start(ctx, "Upsert", trace.WithAttributes(
		attribute.String("collection", collection),
		attribute.Int("documents", len(docs)),
	))
	defer span.End()

	if len(docs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, doc := range docs {
		metadataJSON, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal document metadata: %w", err)
		}
		batch.Queue(`
			INSERT INTO vector_documents (id, collection, embedding, document, metadata)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (collection, id) DO UPDATE
			SET embedding = EXCLUDED.embedding,
			    document = EXCLUDED.document,
			    metadata = EXCLUDED.metadata`,
			doc.ID, collection, pgvector.NewVector(doc.Embedding), doc.Document, metadataJSON,
		)
	}

	results := r.pgpool.SendBatch(ctx, batch)
	defer results.Close()

	for range docs {
		if _, err := results.Exec(); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to upsert vector document: %w", err)
		}
	}

	span.SetStatus(codes.Ok, "Documents upserted")
	r.logger.DebugContext(ctx, "Upserted vector documents", slog.String("collection", collection), slog.Int("count", len(docs)))
	return nil
}

// SearchSimilar returns the n nearest documents by cosine distance.
func (r *RepositoryImpl) SearchSimilar(ctx context.Context, collection string, embedding []float32, n int) ([]types.VectorMatch, error) {
	ctx, span := otel.Tracer("VectorstoreRepo").Start(ctx, "SearchSimilar", trace.WithAttributes(
		attribute.String("collection", collection),
		attribute.Int("limit", n),
	))
	defer span.End()

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, `
		SELECT document, metadata, embedding <=> $1 AS distance
		FROM vector_documents
		WHERE collection = $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(embedding), collection, n,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("vector similarity query failed: %w", err)
	}
	defer rows.Close()

	var matches []types.VectorMatch
	for rows.Next() {
		var m types.VectorMatch
		var metadataJSON []byte
		if err := rows.Scan(&m.Document, &metadataJSON, &m.Distance); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan vector match: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &m.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode match metadata: %w", err)
			}
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("vector similarity rows failed: %w", err)
	}

	metrics.Get().VectorQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	span.SetStatus(codes.Ok, "Similarity search completed")
	return matches, nil
}

// Count returns how many documents a collection holds.
func (r *RepositoryImpl) Count(ctx context.Context, collection string) (int, error) {
	ctx, span := otel.Tracer("VectorstoreRepo").Start(ctx, "Count", trace.WithAttributes(
		attribute.String("collection", collection),
	))
	defer span.End()

	var count int
	err := r.pgpool.QueryRow(ctx,
		`SELECT count(*) FROM vector_documents WHERE collection = $1`, collection,
	).Scan(&count)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count collection %s: %w", collection, err)
	}

	span.SetStatus(codes.Ok, "Count retrieved")
	return count, nil
}

// DeleteBySource removes every document whose metadata source matches. Used
// to clear previous policy chunks before re-ingestion.
func (r *RepositoryImpl) DeleteBySource(ctx context.Context, collection, source string) (int64, error) {
	ctx, span := otel.Tracer("VectorstoreRepo").Start(ctx, "DeleteBySource", trace.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("source", source),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx,
		`DELETE FROM vector_documents WHERE collection = $1 AND metadata ->> 'source' = $2`,
		collection, source,
	)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to delete documents by source: %w", err)
	}

	span.SetStatus(codes.Ok, "Documents deleted")
	return tag.RowsAffected(), nil
}

// Stats summarizes a collection: chunk count plus the distinct policy types
// and source files seen in metadata.
func (r *RepositoryImpl) Stats(ctx context.Context, collection string) (*types.CollectionStats, error) {
	ctx, span := otel.Tracer("VectorstoreRepo").Start(ctx, "Stats", trace.WithAttributes(
		attribute.String("collection", collection),
	))
	defer span.End()

	stats := &types.CollectionStats{
		PolicyTypes: []string{},
		PolicyFiles: []string{},
	}

	err := r.pgpool.QueryRow(ctx,
		`SELECT count(*) FROM vector_documents WHERE collection = $1`, collection,
	).Scan(&stats.TotalChunks)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count collection %s: %w", collection, err)
	}

	if stats.TotalChunks == 0 {
		span.SetStatus(codes.Ok, "Collection empty")
		return stats, nil
	}

	rows, err := r.pgpool.Query(ctx, `
		SELECT DISTINCT metadata ->> 'policy_type', metadata ->> 'filename'
		FROM vector_documents
		WHERE collection = $1`, collection,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query collection stats: %w", err)
	}
	defer rows.Close()

	seenTypes := make(map[string]bool)
	seenFiles := make(map[string]bool)
	for rows.Next() {
		var policyType, filename *string
		if err := rows.Scan(&policyType, &filename); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan collection stats: %w", err)
		}
		if policyType != nil && *policyType != "" && !seenTypes[*policyType] {
			seenTypes[*policyType] = true
			stats.PolicyTypes = append(stats.PolicyTypes, *policyType)
		}
		if filename != nil && *filename != "" && !seenFiles[*filename] {
			seenFiles[*filename] = true
			stats.PolicyFiles = append(stats.PolicyFiles, *filename)
		}
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("collection stats rows failed: %w", err)
	}

	sort.Strings(stats.PolicyTypes)
	sort.Strings(stats.PolicyFiles)

	span.SetStatus(codes.Ok, "Stats retrieved")
	return stats, nil
}
