package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/internal/api/embeddings"
	"github.com/wanderplan/agent-service/internal/api/vectorstore"
	"github.com/wanderplan/agent-service/internal/types"
)

// PolicySource marks every chunk ingested from the policies directory so
// re-ingestion can clear exactly that set.
const PolicySource = "policy_document"

var _ Service = (*ServiceImpl)(nil)

// Service loads policy documents into the vector index and answers policy
// questions by similarity search.
type Service interface {
	IngestPolicies(ctx context.Context) error
	SearchPolicies(ctx context.Context, query string, n int) []types.PolicyMatch
}

type ServiceImpl struct {
	logger       *slog.Logger
	embedder     embeddings.Provider
	store        vectorstore.Repository
	policiesDir  string
	chunkSize    int
	chunkOverlap int
}

func NewServiceImpl(store vectorstore.Repository, embedder embeddings.Provider, policiesDir string, chunkSize, chunkOverlap int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		embedder:     embedder,
		store:        store,
		policiesDir:  policiesDir,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

type policyFile struct {
	filename   string
	policyType string
	fileType   string
	content    string
}

// IngestPolicies reads every .md, .txt and .pdf file in the policies
// directory, chunks them, embeds the chunks and replaces the policy
// collection with the result. A missing directory is created and treated as
// empty. Re-running is idempotent.
func (s *ServiceImpl) IngestPolicies(ctx context.Context) error {
	ctx, span := otel.Tracer("PolicyService").Start(ctx, "IngestPolicies")
	defer span.End()

	l := s.logger.With(slog.String("method", "IngestPolicies"))
	l.InfoContext(ctx, "Starting policy ingestion", slog.String("dir", s.policiesDir))

	if _, err := os.Stat(s.policiesDir); os.IsNotExist(err) {
		l.WarnContext(ctx, "Policies directory not found, creating it", slog.String("dir", s.policiesDir))
		if err := os.MkdirAll(s.policiesDir, 0o755); err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create policies directory: %w", err)
		}
		return nil
	}

	entries, err := os.ReadDir(s.policiesDir)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to read policies directory: %w", err)
	}

	var files []policyFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".txt" && ext != ".pdf" {
			continue
		}

		pf, err := s.loadPolicyFile(filepath.Join(s.policiesDir, entry.Name()))
		if err != nil {
			l.ErrorContext(ctx, "Skipping unreadable policy file",
				slog.String("file", entry.Name()), slog.Any("error", err))
			continue
		}
		if pf == nil {
			l.WarnContext(ctx, "Skipping empty policy file", slog.String("file", entry.Name()))
			continue
		}
		files = append(files, *pf)
	}

	if len(files) == 0 {
		l.WarnContext(ctx, "No policy files found, nothing to ingest")
		return nil
	}

	var docs []types.VectorDocument
	var chunkTexts []string
	typeSet := make(map[string]bool)
	for _, pf := range files {
		chunks := ChunkText(pf.content, s.chunkSize, s.chunkOverlap)
		kept := 0
		for i, chunk := range chunks {
			if len(strings.TrimSpace(chunk)) < 10 {
				continue
			}
			docs = append(docs, types.VectorDocument{
				ID:       fmt.Sprintf("%s_%d", pf.filename, i),
				Document: chunk,
				Metadata: map[string]string{
					"policy_type": pf.policyType,
					"filename":    pf.filename,
					"file_type":   pf.fileType,
					"chunk_index": fmt.Sprintf("%d", i),
					"source":      PolicySource,
				},
			})
			chunkTexts = append(chunkTexts, chunk)
			kept++
		}
		typeSet[pf.policyType] = true
		l.InfoContext(ctx, "Chunked policy file", slog.String("file", pf.filename), slog.Int("chunks", kept))
	}

	if len(docs) == 0 {
		l.WarnContext(ctx, "No usable policy chunks after filtering")
		return nil
	}

	l.InfoContext(ctx, "Generating embeddings for policy chunks", slog.Int("chunks", len(docs)))
	vectors, err := s.embedder.EmbedBatch(ctx, chunkTexts)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to embed policy chunks: %w", err)
	}
	for i := range docs {
		docs[i].Embedding = vectors[i]
	}

	deleted, err := s.store.DeleteBySource(ctx, vectorstore.CollectionPolicies, PolicySource)
	if err != nil {
		l.WarnContext(ctx, "Could not clear existing policy chunks", slog.Any("error", err))
	} else if deleted > 0 {
		l.InfoContext(ctx, "Cleared existing policy chunks", slog.Int64("deleted", deleted))
	}

	if err := s.store.Upsert(ctx, vectorstore.CollectionPolicies, docs); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to store policy chunks: %w", err)
	}

	policyTypes := make([]string, 0, len(typeSet))
	for t := range typeSet {
		policyTypes = append(policyTypes, t)
	}

	l.InfoContext(ctx, "Policy ingestion completed",
		slog.Int("chunks", len(docs)),
		slog.Int("files", len(files)),
		slog.Any("policy_types", policyTypes),
	)
	span.SetStatus(codes.Ok, "Policies ingested")
	return nil
}

// SearchPolicies returns the n policy chunks closest to the query. Policy
// lookup is advisory in the chat flow, so failures yield an empty slice.
func (s *ServiceImpl) SearchPolicies(ctx context.Context, query string, n int) []types.PolicyMatch {
	ctx, span := otel.Tracer("PolicyService").Start(ctx, "SearchPolicies", trace.WithAttributes(
		attribute.Int("limit", n),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "SearchPolicies"))

	queryEmbedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		l.ErrorContext(ctx, "Failed to embed policy query", slog.Any("error", err))
		span.RecordError(err)
		return []types.PolicyMatch{}
	}

	matches, err := s.store.SearchSimilar(ctx, vectorstore.CollectionPolicies, queryEmbedding, n)
	if err != nil {
		l.ErrorContext(ctx, "Policy similarity search failed", slog.Any("error", err))
		span.RecordError(err)
		return []types.PolicyMatch{}
	}

	results := make([]types.PolicyMatch, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.PolicyMatch{
			Content:  m.Document,
			Metadata: m.Metadata,
			Distance: m.Distance,
		})
	}

	l.InfoContext(ctx, "Policy search completed", slog.Int("results", len(results)))
	span.SetStatus(codes.Ok, "Policy search completed")
	return results
}

// loadPolicyFile reads one policy file. The policy type comes from the file
// stem with underscores as spaces, title-cased. Returns nil for files with
// no extractable content.
func (s *ServiceImpl) loadPolicyFile(path string) (*policyFile, error) {
	filename := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(filename))
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	var content string
	var err error
	if ext == ".pdf" {
		content, err = extractPDFText(path)
	} else {
		var data []byte
		data, err = os.ReadFile(path)
		content = string(data)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	return &policyFile{
		filename:   filename,
		policyType: titleCase(strings.ReplaceAll(stem, "_", " ")),
		fileType:   ext,
		content:    content,
	}, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
