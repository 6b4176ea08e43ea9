package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/redact"
	"github.com/phrazzld/srsforge/internal/workflow"
)

// Common errors
var (
	ErrNilRunRepository = errors.New("run repository cannot be nil")
	ErrNilExecutor      = errors.New("executor cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyRunID       = errors.New("run ID cannot be empty")
	ErrPipelineFailed   = errors.New("pipeline run failed")
)

// RunRepository is the part of the run store used by pipeline tasks.
type RunRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error
	UpdateProgress(ctx context.Context, id uuid.UUID, currentNode string, logs, errs []string) error
}

// Executor runs the generation pipeline for a run.
type Executor interface {
	Execute(ctx context.Context, run *domain.Run, opts ...workflow.Option) (*workflow.State, error)
}

// pipelinePayload represents the serialized data stored in the task
type pipelinePayload struct {
	RunID uuid.UUID `json:"run_id"`
}

// PipelineTask implements the Task interface for generating the project of
// a stored run.
type PipelineTask struct {
	id       uuid.UUID
	runID    uuid.UUID
	runs     RunRepository
	executor Executor
	logger   *slog.Logger
	status   TaskStatus
}

// NewPipelineTask creates a task for the given run.
func NewPipelineTask(
	runID uuid.UUID,
	runs RunRepository,
	executor Executor,
	logger *slog.Logger,
) (*PipelineTask, error) {
	return newPipelineTask(uuid.New(), runID, runs, executor, logger)
}

func newPipelineTask(
	id, runID uuid.UUID,
	runs RunRepository,
	executor Executor,
	logger *slog.Logger,
) (*PipelineTask, error) {
	if runs == nil {
		return nil, ErrNilRunRepository
	}
	if executor == nil {
		return nil, ErrNilExecutor
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if runID == uuid.Nil {
		return nil, ErrEmptyRunID
	}

	return &PipelineTask{
		id:       id,
		runID:    runID,
		runs:     runs,
		executor: executor,
		logger:   logger.With("task_type", TaskTypePipelineRun, "run_id", runID),
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *PipelineTask) ID() uuid.UUID {
	return t.id
}

// RunID returns the run the task generates.
func (t *PipelineTask) RunID() uuid.UUID {
	return t.runID
}

// Type returns the task type identifier
func (t *PipelineTask) Type() string {
	return TaskTypePipelineRun
}

// Payload returns the task data as a byte slice
func (t *PipelineTask) Payload() []byte {
	data, err := json.Marshal(pipelinePayload{RunID: t.runID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *PipelineTask) Status() TaskStatus {
	return t.status
}

// Execute loads the run, executes the pipeline while persisting its progress,
// and stores the final status. A run whose workflow ended in the error
// handler is marked failed and reported as ErrPipelineFailed. A run
// interrupted by cancellation goes back to pending so that the recovered
// task can start it again.
func (t *PipelineTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting pipeline task")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	run, err := t.runs.GetByID(ctx, t.runID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve run", "error", err)
		return fmt.Errorf("failed to retrieve run: %w", err)
	}

	if run.Finished() {
		t.status = TaskStatusCompleted
		t.logger.Warn("run already finished, skipping", "run_status", run.Status)
		return nil
	}

	if err := t.runs.UpdateStatus(ctx, t.runID, domain.RunStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to update run status to processing", "error", err)
		return fmt.Errorf("failed to update run status to processing: %w", err)
	}

	progress := &progressObserver{runs: t.runs, runID: t.runID, logger: t.logger}
	state, runErr := t.executor.Execute(ctx, run, workflow.WithObserver(progress))

	// Final bookkeeping must survive cancellation of ctx.
	bg := context.WithoutCancel(ctx)
	if state != nil {
		progress.save(bg, "", state)
	}

	if runErr != nil && ctx.Err() != nil {
		t.status = TaskStatusPending
		t.logger.Warn("pipeline interrupted", "error", runErr)
		if err := t.runs.UpdateStatus(bg, t.runID, domain.RunStatusPending); err != nil {
			t.logger.Error("failed to reset run status", "error", err)
		}
		return fmt.Errorf("pipeline interrupted: %w", runErr)
	}

	failed := runErr != nil || state == nil || state.Failed()
	final := domain.RunStatusCompleted
	if failed {
		final = domain.RunStatusFailed
	}
	if err := t.runs.UpdateStatus(bg, t.runID, final); err != nil {
		t.logger.Error("failed to update run final status", "status", final, "error", err)
	}

	switch {
	case runErr != nil:
		t.status = TaskStatusFailed
		t.logger.Error("pipeline execution failed", "error", runErr)
		return fmt.Errorf("%w: %w", ErrPipelineFailed, runErr)
	case failed:
		t.status = TaskStatusFailed
		t.logger.Warn("pipeline finished with errors", "last_error", state.LastError())
		return fmt.Errorf("%w: %s", ErrPipelineFailed, state.LastError())
	}

	t.status = TaskStatusCompleted
	t.logger.Info("pipeline task completed successfully",
		"generated_files", len(state.GeneratedCode),
		"visited", state.Visited)
	return nil
}

// progressObserver persists the logs and errors of a run as each node
// starts and finishes.
type progressObserver struct {
	runs   RunRepository
	runID  uuid.UUID
	logger *slog.Logger
}

func (o *progressObserver) NodeStarted(ctx context.Context, node string, s *workflow.State) context.Context {
	o.save(ctx, node, s)
	return ctx
}

func (o *progressObserver) NodeFinished(ctx context.Context, node string, s *workflow.State, _ string, _ error) {
	o.save(ctx, node, s)
}

// save records progress. An empty node keeps the last visited one. Error
// lines are visible to API clients and are redacted first.
func (o *progressObserver) save(ctx context.Context, node string, s *workflow.State) {
	if node == "" && len(s.Visited) > 0 {
		node = s.Visited[len(s.Visited)-1]
	}
	if err := o.runs.UpdateProgress(ctx, o.runID, node, s.Logs, redact.Lines(s.Errors)); err != nil {
		o.logger.Warn("failed to record run progress", "node", node, "error", err)
	}
}
