//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/srsforge/internal/redact"
)

// Environment variables consulted by URL, in order of preference.
var urlEnvVars = []string{"FORGE_TEST_DATABASE_URL", "FORGE_DATABASE_URL"}

// URL returns the first non-empty database URL from the environment.
func URL() string {
	for _, name := range urlEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Open connects to the test database and applies migrate to it. The test is
// skipped when no URL is configured. The connection is closed on cleanup.
func Open(t *testing.T, migrate func(*sql.DB) error) *sql.DB {
	t.Helper()

	dsn := URL()
	if dsn == "" {
		t.Skipf("none of %v set, skipping database test", urlEnvVars)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.String(dsn), err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("failed to ping test database %s: %v", redact.String(dsn), err)
	}

	if migrate != nil {
		if err := migrate(db); err != nil {
			t.Fatalf("failed to migrate test database: %v", err)
		}
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
