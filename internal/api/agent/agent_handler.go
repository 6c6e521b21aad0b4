package agent

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/wanderplan/agent-service/app/middleware"
	"github.com/wanderplan/agent-service/internal/api"
	"github.com/wanderplan/agent-service/internal/types"
)

type AgentHandler struct {
	agentService Service
	verifier     *appMiddleware.SecretVerifier
	logger       *slog.Logger
}

func NewAgentHandler(agentService Service, verifier *appMiddleware.SecretVerifier, logger *slog.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		verifier:     verifier,
		logger:       logger,
	}
}

// CreateTravelPlan generates a personalized travel plan for a booking.
// The shared secret in the body is checked before any work happens.
func (h *AgentHandler) CreateTravelPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "CreateTravelPlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/plan"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateTravelPlan"))

	var req types.PlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !h.verifier.Verify(req.Secret) {
		l.WarnContext(ctx, "Invalid secret token in plan request")
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid authentication token")
		return
	}

	if req.BookingID <= 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "booking_id is required")
		return
	}

	l.InfoContext(ctx, "Plan request received",
		slog.Int64("booking_id", req.BookingID),
		slog.Int64("user_id", req.UserID),
	)

	plan, err := h.agentService.GeneratePlan(ctx, &req)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Booking not found")
			return
		}
		l.ErrorContext(ctx, "Plan generation failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate travel plan")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// Chat handles one conversational turn. The router itself never fails, so
// the only error responses here are validation ones.
func (h *AgentHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AgentHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/agent/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !h.verifier.Verify(req.Secret) {
		l.WarnContext(ctx, "Invalid secret token in chat request")
		api.ErrorResponse(w, r, http.StatusForbidden, "Invalid authentication token")
		return
	}

	if req.Message == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "message must not be empty")
		return
	}

	resp := h.agentService.HandleChat(ctx, &req)
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
