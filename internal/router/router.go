package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appMiddleware "github.com/wanderplan/agent-service/app/middleware"
	"github.com/wanderplan/agent-service/internal/container"
)

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied before
// mounting this router in main.go.
func SetupRouter(c *container.Container) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:5000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appMiddleware.SecretHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Heartbeat
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Get("/", c.HealthHandler.Root)
	r.Get("/health", c.HealthHandler.Health)

	// Agent routes authenticate via the secret carried in the request body,
	// checked inside the handlers before any work happens.
	r.Route("/agent", func(r chi.Router) {
		r.Post("/plan", c.AgentHandler.CreateTravelPlan)
		r.Post("/chat", c.AgentHandler.Chat)
	})

	// Admin routes authenticate via header since they carry no body secret.
	r.Route("/admin", func(r chi.Router) {
		r.Use(appMiddleware.RequireSecret(c.SecretVerifier))
		r.Post("/ingest-policies", c.AdminHandler.IngestPolicies)
		r.Get("/search-policies", c.AdminHandler.SearchPolicies)
		r.Get("/policy-stats", c.AdminHandler.PolicyStats)
	})

	return r
}
