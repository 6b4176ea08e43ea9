package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// ArtifactStore defines the interface for generated file metadata.
type ArtifactStore interface {
	// Save records an artifact. Saving the same path twice for a run
	// replaces the earlier record.
	Save(ctx context.Context, artifact *domain.Artifact) error

	// ListByRun returns the artifacts of a run ordered by path.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.Artifact, error)

	// WithTx returns an ArtifactStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ArtifactStore
}
