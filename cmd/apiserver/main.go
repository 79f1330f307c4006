// Command apiserver runs the HSCode-Intelligence classification API server.
// It is the deployment entrypoint; `hscode serve` assembles the same server
// for local use.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/HSCode-Intelligence/internal/bootstrap"
	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

// Populated via -ldflags at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	migrationsPath := flag.String("migrations", "migrations", "migration directory, empty to skip startup migrations")
	flag.Parse()

	if err := run(*configPath, *port, *migrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, migrationsPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := bootstrap.NewLoggerFromConfig(cfg.Log)
	if err != nil {
		return err
	}

	logger.Info("Starting HSCode-Intelligence API server",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.String("built", BuildDate),
		logging.Int("port", cfg.Server.Port))

	if migrationsPath != "" {
		dbURL := postgres.BuildDSN(cfg.Database)
		if err := postgres.RunMigrations(dbURL, "file://"+migrationsPath); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	server := bootstrap.BuildAPIServer(app, Version)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	return server.Stop(context.Background())
}

// loadConfig prefers the config file and falls back to environment variables
// when the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err == nil {
		return config.Load(path)
	}
	return config.LoadFromEnv()
}

//Personal.AI order the ending
