package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/store"
)

// PostgresArtifactStore implements the store.ArtifactStore interface.
type PostgresArtifactStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresArtifactStore creates a new PostgreSQL implementation of the ArtifactStore interface.
func NewPostgresArtifactStore(db store.DBTX, logger *slog.Logger) *PostgresArtifactStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresArtifactStore{
		db:     db,
		logger: logger.With(slog.String("component", "artifact_store")),
	}
}

var _ store.ArtifactStore = (*PostgresArtifactStore)(nil)

// Save implements store.ArtifactStore.Save. A second save of the same run
// and path replaces kind, size and checksum; the first ID is kept.
func (s *PostgresArtifactStore) Save(ctx context.Context, a *domain.Artifact) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO artifacts (id, run_id, path, kind, size, sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id, path) DO UPDATE
		SET kind = EXCLUDED.kind, size = EXCLUDED.size, sha256 = EXCLUDED.sha256,
			created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.RunID, a.Path, string(a.Kind), a.Size, a.SHA256, a.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: run with ID %s not found", store.ErrInvalidEntity, a.RunID)
		}
		log.Error("failed to save artifact",
			slog.String("error", err.Error()),
			slog.String("run_id", a.RunID.String()),
			slog.String("path", a.Path))
		return MapError(err)
	}
	return nil
}

// ListByRun implements store.ArtifactStore.ListByRun.
func (s *PostgresArtifactStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.Artifact, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, path, kind, size, sha256, created_at
		FROM artifacts
		WHERE run_id = $1
		ORDER BY path ASC
	`, runID)
	if err != nil {
		log.Error("failed to list artifacts",
			slog.String("error", err.Error()),
			slog.String("run_id", runID.String()))
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	artifacts := []*domain.Artifact{}
	for rows.Next() {
		var (
			a    domain.Artifact
			kind string
		)
		if err := rows.Scan(&a.ID, &a.RunID, &a.Path, &kind, &a.Size, &a.SHA256, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.Kind = domain.ArtifactKind(kind)
		artifacts = append(artifacts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return artifacts, nil
}

// WithTx implements store.ArtifactStore.WithTx.
func (s *PostgresArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return &PostgresArtifactStore{db: tx, logger: s.logger}
}
