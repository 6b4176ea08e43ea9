package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// TraceStore persists trace runs.
type TraceStore interface {
	// StartTraceRun inserts a trace run that has not ended yet.
	StartTraceRun(ctx context.Context, tr *domain.TraceRun) error

	// EndTraceRun records the outputs, error and end time of a trace run.
	// Returns ErrTraceRunNotFound if the trace run does not exist.
	EndTraceRun(ctx context.Context, tr *domain.TraceRun) error

	// ListByRun returns the trace runs of a pipeline run in start order.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.TraceRun, error)
}
