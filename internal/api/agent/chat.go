package agent

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

	"github.com/wanderplan/agent-service/app/observability/metrics"
	"github.com/wanderplan/agent-service/internal/types"
)

const apologyMessage = "I'm sorry, I ran into a problem handling that. Please try again in a moment."

const chatSystemPrompt = "You are a friendly travel assistant for a vacation rental platform. " +
	"Answer concisely and helpfully. If you do not know something, say so."

// HandleChat classifies the message and dispatches to the matching branch.
// The conversational surface never raises to its caller: every failure,
// including panics in a branch, collapses to one apologetic reply.
func (s *ServiceImpl) HandleChat(ctx context.Context, req *types.ChatRequest) (resp *types.ChatResponse) {
	ctx, span := otel.Tracer("AgentService").Start(ctx, "HandleChat", trace.WithAttributes(
		attribute.Int64("user.id", req.UserID),
	))
	defer span.End()

	metrics.Get().ChatRequestsTotal.Add(ctx, 1)
	l := s.logger.With(slog.String("method", "HandleChat"), slog.Int64("user_id", req.UserID))

	defer func() {
		if r := recover(); r != nil {
			l.ErrorContext(ctx, "Chat branch panicked", slog.Any("panic", r))
			span.SetStatus(codes.Error, "Chat branch panicked")
			resp = &types.ChatResponse{Message: apologyMessage}
		}
	}()

	intent := ClassifyIntent(req.Message, req.BookingID != nil)
	l.InfoContext(ctx, "Chat intent classified", slog.String("intent", intent.String()))
	span.SetAttributes(attribute.String("chat.intent", intent.String()))

	switch intent {
	case IntentBookings:
		return s.chatBookings(ctx, req)
	case IntentPlan:
		return s.chatPlan(ctx, req)
	case IntentClarify:
		return &types.ChatResponse{
			Message: "I'd love to help plan your trip! Which booking is this for? Please include your booking id so I can pull up the details.",
		}
	case IntentPolicy:
		return s.chatPolicy(ctx, req)
	default:
		return s.chatGeneral(ctx, req)
	}
}

// chatBookings lists the user's active bookings, naming up to three.
func (s *ServiceImpl) chatBookings(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	l := s.logger.With(slog.String("method", "chatBookings"))

	bookings, err := s.bookings.GetUserBookings(ctx, req.UserID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list bookings", slog.Any("error", err))
		return &types.ChatResponse{Message: apologyMessage}
	}

	active := filterActiveBookings(bookings, time.Now())
	if len(active) == 0 {
		return &types.ChatResponse{Message: "You don't have any active bookings right now. Once you book a stay, I can help you plan it!"}
	}

	names := make([]string, 0, 3)
	for i, b := range active {
		if i == 3 {
			break
		}
		names = append(names, fmt.Sprintf("%s in %s, %s", b.PropertyName, b.City, b.State))
	}

	msg := fmt.Sprintf("You have %d active booking(s): %s", len(active), strings.Join(names, "; "))
	if len(active) > 3 {
		msg += fmt.Sprintf(" ...and %d more", len(active)-3)
	}
	msg += ". Want me to plan an itinerary for one of them?"

	return &types.ChatResponse{Message: msg, Data: active}
}

// chatPlan runs the full planning workflow for the referenced booking and
// attaches the plan as structured data.
func (s *ServiceImpl) chatPlan(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	l := s.logger.With(slog.String("method", "chatPlan"))

	plan, err := s.GeneratePlan(ctx, &types.PlanRequest{
		BookingID: *req.BookingID,
		UserID:    req.UserID,
		Query:     req.Message,
	})
	if err != nil {
		l.ErrorContext(ctx, "Plan generation from chat failed", slog.Any("error", err))
		return &types.ChatResponse{Message: apologyMessage}
	}

	return &types.ChatResponse{
		Message: fmt.Sprintf("Here's your personalized travel plan for %s! It covers %d day(s) with activities, restaurants and packing suggestions.", plan.Destination, len(plan.Itinerary)),
		Data:    plan,
	}
}

// chatPolicy answers a policy question grounded on retrieved policy chunks,
// attributing the distinct policy types it drew from.
func (s *ServiceImpl) chatPolicy(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	l := s.logger.With(slog.String("method", "chatPolicy"))

	chunks := s.policies.SearchPolicies(ctx, req.Message, 3)

	var contextText strings.Builder
	var sources []string
	seen := make(map[string]bool)
	for _, c := range chunks {
		contextText.WriteString(c.Content)
		contextText.WriteString("\n\n")
		if t := c.Metadata["policy_type"]; t != "" && !seen[t] {
			seen[t] = true
			sources = append(sources, t)
		}
	}

	prompt := fmt.Sprintf(
		"Answer the guest's question using the policy excerpts below. If the excerpts do not cover it, say you are not sure.\n\nPOLICY EXCERPTS:\n%s\nQUESTION: %s",
		contextText.String(), req.Message,
	)

	reply, err := s.llm.Chat(ctx, chatSystemPrompt, lastTurns(req.ConversationHistory, 4), prompt)
	if err != nil {
		l.ErrorContext(ctx, "Policy chat failed", slog.Any("error", err))
		return &types.ChatResponse{Message: apologyMessage}
	}

	if len(sources) > 0 {
		reply += "\n\nSources: " + strings.Join(sources, ", ")
	}

	return &types.ChatResponse{Message: reply, Data: sources}
}

// chatGeneral is plain conversation with recent history.
func (s *ServiceImpl) chatGeneral(ctx context.Context, req *types.ChatRequest) *types.ChatResponse {
	l := s.logger.With(slog.String("method", "chatGeneral"))

	reply, err := s.llm.Chat(ctx, chatSystemPrompt, lastTurns(req.ConversationHistory, 6), req.Message)
	if err != nil {
		l.ErrorContext(ctx, "General chat failed", slog.Any("error", err))
		return &types.ChatResponse{Message: apologyMessage}
	}

	return &types.ChatResponse{Message: reply}
}

// filterActiveBookings keeps bookings that are pending or accepted and not
// already finished.
func filterActiveBookings(bookings []types.BookingSummary, now time.Time) []types.BookingSummary {
	today := now.Format("2006-01-02")
	var active []types.BookingSummary
	for _, b := range bookings {
		if b.Status != "PENDING" && b.Status != "ACCEPTED" {
			continue
		}
		if b.CheckOut < today {
			continue
		}
		active = append(active, b)
	}
	return active
}

func lastTurns(history []types.ChatTurn, n int) []types.ChatTurn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
