package bootstrap

import (
	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/HSCode-Intelligence/internal/interfaces/http"
	"github.com/turtacn/HSCode-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/HSCode-Intelligence/internal/interfaces/http/middleware"
)

// BuildAPIServer assembles the HTTP server over a bootstrapped App. Both
// `hscode serve` and cmd/apiserver go through here so the route surface is
// identical in either entrypoint.
func BuildAPIServer(app *App, version string) *httpserver.Server {
	cfg := app.Config

	var checkers []handlers.HealthChecker
	for name, check := range app.HealthChecks() {
		checkers = append(checkers, handlers.HealthCheckerFunc{
			CheckerName: name,
			CheckFunc:   check,
		})
	}

	rateCfg := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(
		rateCfg.RequestsPerSecond,
		rateCfg.BurstSize,
		rateCfg.CleanupInterval,
	)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		Mode:            cfg.Server.Mode,
		Logger:          app.Logger,
		Metrics:         app.Metrics,
		MetricsHandler:  app.Collector.Handler(),
		ClassifyHandler: handlers.NewClassifyHandler(app.Service, app.Cache, app.Logger),
		HealthHandler:   handlers.NewHealthHandler(version, checkers...),
		RateLimiter:     limiter,
		Logging:         middleware.DefaultLoggingConfig(),
		RateLimit:       rateCfg,
		CORS:            middleware.DefaultCORSConfig(),
	})

	app.Logger.Info("API server assembled",
		logging.Int("port", cfg.Server.Port),
		logging.String("mode", cfg.Server.Mode))

	return httpserver.NewServer(cfg.Server, router, app.Logger)
}

// NewLoggerFromConfig builds the process logger from the application's log
// section. The config's "text" format maps to the console encoder.
func NewLoggerFromConfig(cfg config.LogConfig) (logging.Logger, error) {
	format := "json"
	if cfg.Format == "text" || cfg.Format == "console" {
		format = "console"
	}

	outputs := []string{"stdout"}
	if cfg.Output != "" {
		outputs = []string{cfg.Output}
	}

	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           format,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	})
}

//Personal.AI order the ending
