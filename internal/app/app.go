package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jfcardenasg/corredash/config"
	"github.com/jfcardenasg/corredash/internal/api"
	"github.com/jfcardenasg/corredash/internal/service"
	"github.com/jfcardenasg/corredash/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Initializes the repository layer (TransactionsRepository, ReferenceRepository).
//   - Creates the service layer (dashboard, benchmark, auth).
//   - Creates the HTTP handler layer to handle requests.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
//
// Returns:
//   - *gin.Engine: the configured Gin HTTP router.
//   - func(): cleanup function to be executed on shutdown.
//   - error: any initialization error that occurred.
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewTransactionsRepository(db)
	ref := storage.NewReferenceRepository(db)

	// Initialize service layer (business logic)
	dashboardSvc := service.NewDashboardService(repo, ref, cfg.Dashboard.TopN)
	benchmarkSvc := service.NewBenchmarkService(repo, ref, cfg.Dashboard.ReferenceBroker)
	authSvc := service.NewAuthService(ref, cfg.Auth)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	deps := api.RouterDeps{
		Dashboard:    api.NewDashboardHandler(dashboardSvc),
		Benchmark:    api.NewBenchmarkHandler(benchmarkSvc),
		Auth:         api.NewAuthHandler(authSvc),
		JWTSecret:    cfg.Auth.JWTSecret,
		QueryTimeout: time.Duration(cfg.Dashboard.QueryTimeoutSeconds) * time.Second,
	}

	// Setup Gin router with routes
	router := api.NewRouter(deps)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}
