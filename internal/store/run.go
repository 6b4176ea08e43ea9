package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// RunStore defines the interface for pipeline run persistence.
type RunStore interface {
	// Create saves a new run. Returns validation errors from the domain Run
	// if data is invalid.
	Create(ctx context.Context, run *domain.Run) error

	// GetByID retrieves a run by its unique ID.
	// Returns ErrRunNotFound if the run does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// ListByClient returns the runs submitted by a client, newest first.
	ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error)

	// UpdateStatus sets the status of a run.
	// Returns ErrRunNotFound if the run does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error

	// UpdateProgress records the node being executed and the accumulated
	// logs and errors of a run.
	// Returns ErrRunNotFound if the run does not exist.
	UpdateProgress(ctx context.Context, id uuid.UUID, currentNode string, logs, errs []string) error

	// WithTx returns a RunStore that uses the provided transaction.
	WithTx(tx *sql.Tx) RunStore
}
