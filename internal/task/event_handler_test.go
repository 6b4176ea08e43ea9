package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTaskCreator mock implementation of TaskCreator
type MockTaskCreator struct {
	CreateTaskFn func(runID uuid.UUID) (Task, error)
	LastRunID    uuid.UUID
}

func (m *MockTaskCreator) CreateTask(runID uuid.UUID) (Task, error) {
	m.LastRunID = runID
	return m.CreateTaskFn(runID)
}

// MockTaskSubmitter mock implementation of TaskSubmitter
type MockTaskSubmitter struct {
	SubmitFn  func(ctx context.Context, task Task) error
	Submitted []Task
}

func (m *MockTaskSubmitter) Submit(ctx context.Context, task Task) error {
	m.Submitted = append(m.Submitted, task)
	if m.SubmitFn == nil {
		return nil
	}
	return m.SubmitFn(ctx, task)
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	t.Parallel()

	runID := uuid.New()
	requested, err := events.NewRunRequested(runID, uuid.New())
	require.NoError(t, err)

	other, err := events.NewEvent("something_else", map[string]string{"x": "y"})
	require.NoError(t, err)

	malformed, err := events.NewEvent(events.TypeRunRequested, map[string]string{"run_id": "not-a-uuid"})
	require.NoError(t, err)

	tests := []struct {
		name          string
		event         *events.Event
		createErr     error
		submitErr     error
		wantErr       string
		wantSubmitted int
	}{
		{name: "submits task for run request", event: requested, wantSubmitted: 1},
		{name: "ignores other event types", event: other},
		{name: "malformed payload", event: malformed, wantErr: "failed to decode event"},
		{name: "factory error", event: requested, createErr: errors.New("no executor"), wantErr: "failed to create task"},
		{name: "submit error", event: requested, submitErr: ErrQueueFull, wantErr: "failed to submit task", wantSubmitted: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := newTestTask()
			creator := &MockTaskCreator{CreateTaskFn: func(uuid.UUID) (Task, error) {
				if tc.createErr != nil {
					return nil, tc.createErr
				}
				return task, nil
			}}
			submitter := &MockTaskSubmitter{SubmitFn: func(context.Context, Task) error { return tc.submitErr }}

			handler := NewTaskFactoryEventHandler(creator, submitter, discardLogger())
			err := handler.HandleEvent(context.Background(), tc.event)

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Len(t, submitter.Submitted, tc.wantSubmitted)
			if tc.wantSubmitted > 0 {
				assert.Equal(t, runID, creator.LastRunID)
				assert.Equal(t, task.ID(), submitter.Submitted[0].ID())
			}
		})
	}
}

func TestTaskFactoryEventHandler_WithEmitter(t *testing.T) {
	t.Parallel()

	run := newRun(t)
	runs := newMemRuns(run)
	factory := NewPipelineTaskFactory(runs, &fakeExecutor{}, discardLogger())
	submitter := &MockTaskSubmitter{}

	emitter := events.NewInMemoryEventEmitter(discardLogger())
	emitter.RegisterHandler(NewTaskFactoryEventHandler(factory, submitter, discardLogger()))

	event, err := events.NewRunRequested(run.ID, run.ClientID)
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, submitter.Submitted, 1)
	assert.Equal(t, run.ID, submitter.Submitted[0].(*PipelineTask).RunID())
}
