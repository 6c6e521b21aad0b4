package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wanderplan/agent-service/internal/api"
	"github.com/wanderplan/agent-service/internal/api/policy"
	"github.com/wanderplan/agent-service/internal/api/vectorstore"
)

const defaultSearchResults = 3

// AdminHandler exposes the policy maintenance surface: re-ingestion, ad-hoc
// search and stats. The router guards these routes with the shared secret.
type AdminHandler struct {
	policyService policy.Service
	store         vectorstore.Repository
	logger        *slog.Logger
}

func NewAdminHandler(policyService policy.Service, store vectorstore.Repository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		policyService: policyService,
		store:         store,
		logger:        logger,
	}
}

// IngestPolicies triggers a full policy re-ingestion. Run it whenever the
// policy documents change.
func (h *AdminHandler) IngestPolicies(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "IngestPolicies", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/ingest-policies"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "IngestPolicies"))
	l.InfoContext(ctx, "Manual policy ingestion triggered")

	if err := h.policyService.IngestPolicies(ctx); err != nil {
		l.ErrorContext(ctx, "Policy ingestion failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to ingest policies")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Policy documents ingested successfully",
	})
}

// SearchPolicies runs an ad-hoc policy search for testing the index.
func (h *AdminHandler) SearchPolicies(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "SearchPolicies", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/search-policies"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchPolicies"))

	query := r.URL.Query().Get("query")
	if query == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "query parameter is required")
		return
	}

	n := defaultSearchResults
	if raw := r.URL.Query().Get("n_results"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "n_results must be a positive integer")
			return
		}
		n = parsed
	}

	l.InfoContext(ctx, "Ad-hoc policy search", slog.String("query", query), slog.Int("n_results", n))
	results := h.policyService.SearchPolicies(ctx, query, n)

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success":       true,
		"query":         query,
		"results_count": len(results),
		"results":       results,
	})
}

// PolicyStats reports chunk counts and the policy types and files currently
// indexed.
func (h *AdminHandler) PolicyStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AdminHandler").Start(r.Context(), "PolicyStats", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/admin/policy-stats"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "PolicyStats"))

	stats, err := h.store.Stats(ctx, vectorstore.CollectionPolicies)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get policy stats", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get policy stats")
		return
	}

	resp := map[string]interface{}{
		"success":      true,
		"total_chunks": stats.TotalChunks,
		"policy_types": stats.PolicyTypes,
		"policy_files": stats.PolicyFiles,
	}
	if stats.TotalChunks == 0 {
		resp["message"] = "No policies loaded yet. Use /admin/ingest-policies to load them."
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
