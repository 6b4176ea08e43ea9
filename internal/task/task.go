package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypePipelineRun represents the task type for generating a project
	// from a stored run
	TaskTypePipelineRun = "pipeline_run"
)

// ErrNotRebuilt is returned when a stored task is executed before a Factory
// restored its behaviour.
var ErrNotRebuilt = errors.New("no execution function defined for stored task")

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// Factory restores an executable task from its persisted form.
type Factory interface {
	FromPayload(id uuid.UUID, payload []byte) (Task, error)
}

// TaskQueueReader is the consumer side of a queue.
type TaskQueueReader interface {
	// Tasks is closed once the queue is closed and drained.
	Tasks() <-chan Task
}

// TaskQueueWriter is the producer side of a queue.
type TaskQueueWriter interface {
	// Enqueue never blocks. It fails with ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// Record is a task loaded from a TaskStore. It carries the persisted fields
// only; the runner replaces it with a task built by the Factory registered
// for its type.
type Record struct {
	TaskID       uuid.UUID
	TaskType     string
	TaskPayload  []byte
	TaskStatus   TaskStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ID returns the task's unique identifier
func (r *Record) ID() uuid.UUID { return r.TaskID }

// Type returns the task type identifier
func (r *Record) Type() string { return r.TaskType }

// Payload returns the task data as a byte slice
func (r *Record) Payload() []byte { return r.TaskPayload }

// Status returns the persisted task status
func (r *Record) Status() TaskStatus { return r.TaskStatus }

// Execute always fails with ErrNotRebuilt.
func (r *Record) Execute(context.Context) error { return ErrNotRebuilt }
