package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for TraceRun
var (
	ErrTraceRunIDEmpty   = errors.New("trace run ID cannot be empty")
	ErrTraceRunNameEmpty = errors.New("trace run name cannot be empty")
)

// TraceRun records one traced step of a pipeline run: a node execution, an
// LLM call or a generated file. Trace runs nest through ParentID.
type TraceRun struct {
	ID        uuid.UUID      `json:"id"`
	ParentID  *uuid.UUID     `json:"parent_id,omitempty"`
	RunID     uuid.UUID      `json:"run_id"`
	Name      string         `json:"name"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	Outputs   map[string]any `json:"outputs,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
}

// NewTraceRun starts a trace run named name under the given pipeline run.
// parent may be nil for a root trace run.
func NewTraceRun(runID uuid.UUID, parent *TraceRun, name string, inputs map[string]any) (*TraceRun, error) {
	tr := &TraceRun{
		ID:        uuid.New(),
		RunID:     runID,
		Name:      name,
		Inputs:    inputs,
		StartedAt: time.Now().UTC(),
	}
	if parent != nil {
		id := parent.ID
		tr.ParentID = &id
	}
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	return tr, nil
}

// End marks the trace run as finished with the given outputs and error.
func (t *TraceRun) End(outputs map[string]any, err error) {
	now := time.Now().UTC()
	t.EndedAt = &now
	t.Outputs = outputs
	if err != nil {
		t.Error = err.Error()
	}
}

// Duration returns how long the trace run took, or zero while it is open.
func (t *TraceRun) Duration() time.Duration {
	if t.EndedAt == nil {
		return 0
	}
	return t.EndedAt.Sub(t.StartedAt)
}

// Validate checks if the TraceRun has valid data.
func (t *TraceRun) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTraceRunIDEmpty
	}
	if t.Name == "" {
		return ErrTraceRunNameEmpty
	}
	return nil
}
