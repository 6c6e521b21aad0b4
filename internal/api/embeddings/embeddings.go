package embeddings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

var _ Provider = (*GeminiProvider)(nil)

// Provider converts text into fixed-dimension embedding vectors.
type Provider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Available() bool
	Dimension() int
}

// GeminiProvider generates embeddings through the Gemini API. When no API key
// is configured it degrades to zero vectors so the retrieval pipeline keeps
// working, it just finds nothing meaningful.
type GeminiProvider struct {
	client  *genai.Client
	model   string
	dim     int
	timeout time.Duration
	logger  *slog.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, dim int, timeout time.Duration, logger *slog.Logger) *GeminiProvider {
	p := &GeminiProvider{
		model:   model,
		dim:     dim,
		timeout: timeout,
		logger:  logger,
	}

	if apiKey == "" {
		logger.Warn("Embedding API key not set, embeddings degrade to zero vectors")
		return p
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("Failed to initialize embedding client", slog.Any("error", err))
		return p
	}

	p.client = client
	logger.Info("Embedding provider initialized", slog.String("model", model), slog.Int("dimension", dim))
	return p
}

func (p *GeminiProvider) Available() bool {
	return p.client != nil
}

func (p *GeminiProvider) Dimension() int {
	return p.dim
}

// EmbedText converts a single text into an embedding vector. Failures return
// a zero vector instead of an error so callers never stall on the provider.
func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingProvider").Start(ctx, "EmbedText", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	if p.client == nil {
		return p.zeroVector(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr[int32](int32(p.dim)),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Embedding request failed, returning zero vector", slog.Any("error", err))
		span.RecordError(err)
		return p.zeroVector(), nil
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		p.logger.WarnContext(ctx, "Embedding response was empty, returning zero vector")
		return p.zeroVector(), nil
	}

	span.SetStatus(codes.Ok, "Embedding generated")
	return resp.Embeddings[0].Values, nil
}

// EmbedBatch converts multiple texts into embedding vectors. The result slice
// always has one vector per input text.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := otel.Tracer("EmbeddingProvider").Start(ctx, "EmbedBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(texts)),
	))
	defer span.End()

	if p.client == nil {
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = p.zeroVector()
		}
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr[int32](int32(p.dim)),
	})
	if err != nil {
		p.logger.ErrorContext(ctx, "Batch embedding request failed, returning zero vectors", slog.Any("error", err))
		span.RecordError(err)
		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = p.zeroVector()
		}
		return out, nil
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) == 0 {
			out[i] = p.zeroVector()
			continue
		}
		out[i] = emb.Values
	}

	span.SetStatus(codes.Ok, "Batch embeddings generated")
	return out, nil
}

func (p *GeminiProvider) zeroVector() []float32 {
	return make([]float32, p.dim)
}
