// Package main implements the srsforge API server, which accepts SRS
// documents over HTTP and generates FastAPI projects from them in the
// background.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/platform/postgres"
	"github.com/phrazzld/srsforge/internal/redact"
)

// dbConnectRetry bounds how long startup waits for the database.
const dbConnectRetry = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", "error", redact.Error(err))
		os.Exit(1)
	}
}

// run loads configuration, connects to the database, applies pending
// migrations and serves until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, dbConnectRetry, l)
	if err != nil {
		return err
	}
	l.Info("database connection established")

	if err := postgres.Migrate(db, postgres.MigrateUp, l); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

// loadAppConfig loads and validates the full configuration.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
