package health

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wanderplan/agent-service/internal/api"
	"github.com/wanderplan/agent-service/internal/api/booking"
	"github.com/wanderplan/agent-service/internal/api/llmclient"
	"github.com/wanderplan/agent-service/internal/api/websearch"
	"github.com/wanderplan/agent-service/internal/types"
)

// HealthHandler probes the service's dependencies. Database and model probes
// run concurrently since both involve a network round trip.
type HealthHandler struct {
	bookings booking.Repository
	llm      *llmclient.AIClient
	search   *websearch.TavilyClient
	logger   *slog.Logger
}

func NewHealthHandler(bookings booking.Repository, llm *llmclient.AIClient, search *websearch.TavilyClient, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		bookings: bookings,
		llm:      llm,
		search:   search,
		logger:   logger,
	}
}

// Root is the service banner.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"message": "WanderPlan Agent Service",
		"version": "1.0.0",
		"status":  "operational",
	})
}

// Health reports per-dependency status plus an aggregate. The service is
// degraded whenever the database or the model is not connected; a missing
// search key only shows as not_configured.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("HealthHandler").Start(r.Context(), "Health", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/health"),
	))
	defer span.End()

	services := map[string]string{
		"api":    "healthy",
		"search": "not_configured",
	}
	if h.search != nil && h.search.Available() {
		services["search"] = "configured"
	}

	var dbConnected, modelConnected bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dbConnected = h.bookings.TestConnection(gctx)
		return nil
	})
	g.Go(func() error {
		modelConnected = h.llm.TestConnection(gctx)
		return nil
	})
	_ = g.Wait()

	services["database"] = "disconnected"
	if dbConnected {
		services["database"] = "connected"
	}
	services["model"] = "disconnected"
	if modelConnected {
		services["model"] = "connected"
	}

	status := "healthy"
	if !dbConnected || !modelConnected {
		status = "degraded"
	}

	h.logger.InfoContext(ctx, "Health check completed", slog.String("status", status))

	api.WriteJSONResponse(w, r, http.StatusOK, types.HealthResponse{
		Status:    status,
		Services:  services,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
