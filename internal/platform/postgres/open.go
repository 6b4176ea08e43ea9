package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const pingTimeout = 5 * time.Second

// Open opens a pgx-backed pool and pings it. When retryFor is positive,
// failed pings are retried with exponential backoff for up to that long,
// which covers a database container that is still starting.
func Open(ctx context.Context, dsn string, retryFor time.Duration, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	}

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if retryFor > 0 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = 250 * time.Millisecond
		exp.MaxElapsedTime = retryFor
		policy = exp
	}
	err = backoff.RetryNotify(ping, backoff.WithContext(policy, ctx),
		func(err error, wait time.Duration) {
			logger.Warn("database not ready, retrying",
				slog.String("error", err.Error()),
				slog.Duration("wait", wait))
		})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
