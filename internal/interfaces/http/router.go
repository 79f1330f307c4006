// Package http wires the gin router, middleware chain and HTTP server for
// the classification API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/HSCode-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/HSCode-Intelligence/internal/interfaces/http/middleware"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	promx "github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// RouterConfig collects everything the router needs.
type RouterConfig struct {
	// Mode is the gin mode: "debug", "release" or "test".
	Mode string

	Logger  logging.Logger
	Metrics *promx.AppMetrics

	// MetricsHandler serves GET /metrics when non-nil.
	MetricsHandler http.Handler

	ClassifyHandler *handlers.ClassifyHandler
	HealthHandler   *handlers.HealthHandler

	// RateLimiter is optional; when nil no rate limiting is applied.
	RateLimiter middleware.RateLimiter

	Logging   middleware.LoggingConfig
	RateLimit middleware.RateLimitConfig
	CORS      middleware.CORSConfig
}

// NewRouter assembles the gin engine with the full middleware chain and all
// routes.  Middleware order: recovery, request ID, logging, CORS, metrics,
// rate limiting.
func NewRouter(cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/api/v1")
	{
		if cfg.HealthHandler != nil {
			v1.GET("/health", cfg.HealthHandler.Detailed)
		}
		if cfg.ClassifyHandler != nil {
			v1.POST("/classify", cfg.ClassifyHandler.Classify)
			v1.POST("/classify/batch", cfg.ClassifyHandler.ClassifyBatch)
			v1.GET("/classifications", cfg.ClassifyHandler.ListCases)
			v1.GET("/classifications/:id", cfg.ClassifyHandler.GetCase)
		}
	}

	return r
}

//Personal.AI order the ending
