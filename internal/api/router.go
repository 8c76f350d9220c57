package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jfcardenasg/corredash/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterDeps groups the handlers and settings the router needs.
type RouterDeps struct {
	Dashboard *DashboardHandler
	Benchmark *BenchmarkHandler
	Auth      *AuthHandler

	JWTSecret    string
	QueryTimeout time.Duration // per-request budget for aggregation queries
}

// NewRouter creates a Gin engine with routes configured.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, RateLimiter).
//   - Adds request timeout handling (deps.QueryTimeout, default 30s).
//   - Mounts Swagger docs (/swagger/*any).
//   - Mounts the public login route (/auth/login).
//   - Configures bearer-protected API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in
//     app.InitializeApp().
//
// Returns:
//   - *gin.Engine: Configured Gin router.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
	)

	// ─── Timeout ──────────────────────────────────
	timeout := deps.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── Public auth ──────────────────────────────
	router.POST("/auth/login", deps.Auth.Login)

	// ─── API v1 (bearer token required) ───────────
	v1 := router.Group("/api/v1", middleware.Auth(deps.JWTSecret))
	{
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/summary", deps.Dashboard.GetSummary)
			dashboard.GET("/layout", deps.Dashboard.GetLayout)
			dashboard.POST("/layout", deps.Dashboard.SaveLayout)
			dashboard.GET("/budget", deps.Dashboard.GetBudget)
		}

		benchmark := v1.Group("/benchmark")
		{
			benchmark.GET("/summary", deps.Benchmark.GetSummary)
			benchmark.GET("/ranking", deps.Benchmark.GetRanking)
			benchmark.GET("/trends", deps.Benchmark.GetTrends)
			benchmark.GET("/correagro", deps.Benchmark.GetCorreagro)
			benchmark.GET("/compare", deps.Benchmark.GetCompare)
			benchmark.GET("/sectors", deps.Benchmark.GetSectors)
			benchmark.GET("/products", deps.Benchmark.GetProducts)
		}
	}

	return router
}
