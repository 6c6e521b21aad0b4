package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/wanderplan/agent-service/app/db"
	appMiddleware "github.com/wanderplan/agent-service/app/middleware"
	"github.com/wanderplan/agent-service/config"
	"github.com/wanderplan/agent-service/internal/api/admin"
	"github.com/wanderplan/agent-service/internal/api/agent"
	"github.com/wanderplan/agent-service/internal/api/booking"
	"github.com/wanderplan/agent-service/internal/api/embeddings"
	"github.com/wanderplan/agent-service/internal/api/health"
	"github.com/wanderplan/agent-service/internal/api/llmclient"
	"github.com/wanderplan/agent-service/internal/api/policy"
	"github.com/wanderplan/agent-service/internal/api/rag"
	"github.com/wanderplan/agent-service/internal/api/vectorstore"
	"github.com/wanderplan/agent-service/internal/api/websearch"
)

// Container holds all application dependencies. Everything is constructed
// eagerly at startup, including the connection pool, so concurrent first
// requests never race on initialization.
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Pool           *pgxpool.Pool
	SecretVerifier *appMiddleware.SecretVerifier
	AgentHandler   *agent.AgentHandler
	AdminHandler   *admin.AdminHandler
	HealthHandler  *health.HealthHandler
	PolicyService  policy.Service
}

// NewContainer initializes and returns a new dependency container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	secret := os.Getenv("AGENT_SERVICE_SECRET")
	if secret == "" {
		secret = cfg.Agent.Secret
	}
	verifier := appMiddleware.NewSecretVerifier(secret)

	// External clients
	llm := llmclient.NewAIClient(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), cfg.AI.Model,
		cfg.AI.GenerateTimeout, cfg.AI.ChatTimeout, logger)
	embedder := embeddings.NewGeminiProvider(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"),
		cfg.AI.EmbeddingModel, cfg.AI.EmbeddingDim, cfg.AI.EmbedTimeout, logger)
	tavily := websearch.NewTavilyClient(os.Getenv("TAVILY_API_KEY"), cfg.Search.Timeout, logger)

	// Repositories
	bookingRepo := booking.NewRepositoryImpl(pool, logger)
	vectorRepo := vectorstore.NewRepositoryImpl(pool, logger)

	// Services
	ragService := rag.NewServiceImpl(vectorRepo, embedder, cfg.RAG.MinCorpusSize, cfg.RAG.TopK, logger)
	policyService := policy.NewServiceImpl(vectorRepo, embedder, cfg.Agent.PoliciesDir,
		cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, logger)
	searchService := websearch.NewServiceImpl(tavily, cfg.Search.MaxResults, cfg.Search.SearchDepth,
		cfg.Search.CacheDuration, logger)
	agentService := agent.NewServiceImpl(bookingRepo, ragService, searchService, policyService, llm, logger)

	// Handlers
	agentHandler := agent.NewAgentHandler(agentService, verifier, logger)
	adminHandler := admin.NewAdminHandler(policyService, vectorRepo, logger)
	healthHandler := health.NewHealthHandler(bookingRepo, llm, tavily, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Pool:           pool,
		SecretVerifier: verifier,
		AgentHandler:   agentHandler,
		AdminHandler:   adminHandler,
		HealthHandler:  healthHandler,
		PolicyService:  policyService,
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations.
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
