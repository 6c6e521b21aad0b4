package llmclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/wanderplan/agent-service/app/observability/metrics"
	"github.com/wanderplan/agent-service/internal/types"
)

// AIClient wraps the Gemini API for itinerary generation and chat. A client
// with no API key stays usable, generation then always takes the fallback
// path.
type AIClient struct {
	client          *genai.Client
	model           string
	generateTimeout time.Duration
	chatTimeout     time.Duration
	logger          *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, generateTimeout, chatTimeout time.Duration, logger *slog.Logger) *AIClient {
	ai := &AIClient{
		model:           model,
		generateTimeout: generateTimeout,
		chatTimeout:     chatTimeout,
		logger:          logger,
	}

	if apiKey == "" {
		logger.Warn("Model API key not set, itinerary generation will use the fallback plan")
		return ai
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		logger.Error("Failed to initialize model client", slog.Any("error", err))
		return ai
	}

	ai.client = client
	logger.Info("Model client initialized", slog.String("model", model))
	return ai
}

func (ai *AIClient) Available() bool {
	return ai.client != nil
}

// Generate sends a single prompt and returns the raw model text.
func (ai *AIClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("AIClient").Start(ctx, "Generate", trace.WithAttributes(
		attribute.Int("prompt.length", len(prompt)),
	))
	defer span.End()

	if ai.client == nil {
		return "", fmt.Errorf("model client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, ai.generateTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("model generation failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Generation completed")
	return result.Text(), nil
}

// GenerateItinerary builds the planning prompt from the aggregated context,
// calls the model and parses the structured result. Any failure along the
// way, including an unconfigured model, yields the deterministic fallback
// itinerary so the caller always receives a plan.
func (ai *AIClient) GenerateItinerary(ctx context.Context, sc *types.SearchContext) (*types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("AIClient").Start(ctx, "GenerateItinerary")
	defer span.End()

	l := ai.logger.With(slog.String("method", "GenerateItinerary"))

	if ai.client == nil {
		l.WarnContext(ctx, "Model not available, using fallback itinerary")
		return FallbackItinerary(sc), nil
	}

	prompt := BuildPrompt(sc)
	l.InfoContext(ctx, "Generating itinerary", slog.String("model", ai.model), slog.Int("prompt_length", len(prompt)))

	raw, err := ai.Generate(ctx, prompt)
	if err != nil {
		l.ErrorContext(ctx, "Model generation failed, using fallback itinerary", slog.Any("error", err))
		span.RecordError(err)
		return FallbackItinerary(sc), nil
	}

	l.InfoContext(ctx, "Model response received", slog.Int("response_length", len(raw)))

	parsed, err := ParseResponse(raw)
	if err != nil {
		l.ErrorContext(ctx, "Could not parse model response, using fallback itinerary", slog.Any("error", err))
		span.RecordError(err)
		metrics.Get().LLMParseFailuresTotal.Add(ctx, 1)
		return FallbackItinerary(sc), nil
	}

	span.SetStatus(codes.Ok, "Itinerary generated")
	return parsed, nil
}

// Chat runs one conversational turn with optional history and a system
// instruction.
func (ai *AIClient) Chat(ctx context.Context, system string, history []types.ChatTurn, message string) (string, error) {
	ctx, span := otel.Tracer("AIClient").Start(ctx, "Chat", trace.WithAttributes(
		attribute.Int("history.turns", len(history)),
	))
	defer span.End()

	if ai.client == nil {
		return "", fmt.Errorf("model client not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, ai.chatTimeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	var priorTurns []*genai.Content
	for _, turn := range history {
		var role genai.Role = genai.RoleUser
		if strings.EqualFold(turn.Role, "assistant") || strings.EqualFold(turn.Role, "model") {
			role = genai.RoleModel
		}
		priorTurns = append(priorTurns, genai.NewContentFromText(turn.Content, role))
	}

	chat, err := ai.client.Chats.Create(ctx, ai.model, config, priorTurns)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	result, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("chat message failed: %w", err)
	}

	span.SetStatus(codes.Ok, "Chat turn completed")
	return result.Text(), nil
}

// TestConnection issues a minimal generation to verify the model responds.
func (ai *AIClient) TestConnection(ctx context.Context) bool {
	if ai.client == nil {
		return false
	}

	resp, err := ai.Generate(ctx, "Say 'OK' in one word")
	if err != nil {
		ai.logger.WarnContext(ctx, "Model connection test failed", slog.Any("error", err))
		return false
	}

	ai.logger.InfoContext(ctx, "Model connection test passed", slog.String("response", resp))
	return true
}
