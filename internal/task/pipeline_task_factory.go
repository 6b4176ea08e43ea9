package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// PipelineTaskFactory creates PipelineTask instances
type PipelineTaskFactory struct {
	runs     RunRepository
	executor Executor
	logger   *slog.Logger
}

// NewPipelineTaskFactory creates a new factory for PipelineTasks
func NewPipelineTaskFactory(runs RunRepository, executor Executor, logger *slog.Logger) *PipelineTaskFactory {
	return &PipelineTaskFactory{
		runs:     runs,
		executor: executor,
		logger:   logger.With("component", "pipeline_task_factory"),
	}
}

// CreateTask creates a new PipelineTask for the specified run
func (f *PipelineTaskFactory) CreateTask(runID uuid.UUID) (Task, error) {
	return NewPipelineTask(runID, f.runs, f.executor, f.logger)
}

// FromPayload restores a stored pipeline task.
func (f *PipelineTaskFactory) FromPayload(id uuid.UUID, payload []byte) (Task, error) {
	var p pipelinePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", TaskTypePipelineRun, err)
	}
	return newPipelineTask(id, p.RunID, f.runs, f.executor, f.logger)
}

var _ Factory = (*PipelineTaskFactory)(nil)
