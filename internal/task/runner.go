package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoFactory is returned when a stored task has a type without a
// registered Factory.
var ErrNoFactory = errors.New("no factory registered for task type")

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing. Tasks are persisted before
// they are queued, so work interrupted by a restart is picked up again by
// Recover.
type TaskRunner struct {
	store  TaskStore
	queue  *TaskQueue
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger

	mu        sync.RWMutex
	factories map[string]Factory

	monitor sync.WaitGroup
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	r := &TaskRunner{
		store:     store,
		queue:     queue,
		pool:      NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		config:    config,
		logger:    logger,
		factories: make(map[string]Factory),
	}
	r.pool.SetHandler(r.processTask)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// RegisterFactory registers the Factory used to restore stored tasks of
// taskType during recovery.
func (r *TaskRunner) RegisterFactory(taskType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = f
}

// Submit persists task and adds it to the queue. A task the queue cannot
// accept is marked failed so that it is not run by a later recovery.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			r.logger.Error("failed to mark rejected task as failed",
				"task_id", task.ID(),
				"error", updateErr)
		}
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks, then starts the workers and the stuck
// task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(context.Background()); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start()

	r.monitor.Add(1)
	go r.stuckTaskMonitor(r.pool.Context())

	return nil
}

// Stop gracefully shuts down the task runner. Tasks interrupted by the
// shutdown stay in processing state and are recovered on the next Start.
func (r *TaskRunner) Stop() {
	r.pool.Stop()
	r.monitor.Wait()
	r.queue.Close()
}

// Recover loads any unfinished tasks from the store and queues them.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	// Tasks left in processing were interrupted by a crash or shutdown.
	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pendingTasks),
		"processing_count", len(processingTasks))

	for _, task := range pendingTasks {
		r.requeue(ctx, task, "pending")
	}

	for _, task := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		r.requeue(ctx, task, "processing")
	}

	return nil
}

// rebuild replaces a stored Record with an executable task.
func (r *TaskRunner) rebuild(task Task) (Task, error) {
	rec, ok := task.(*Record)
	if !ok {
		return task, nil
	}

	r.mu.RLock()
	f := r.factories[rec.TaskType]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoFactory, rec.TaskType)
	}
	return f.FromPayload(rec.TaskID, rec.TaskPayload)
}

func (r *TaskRunner) requeue(ctx context.Context, stored Task, origin string) {
	logger := r.logger.With("task_id", stored.ID(), "task_type", stored.Type(), "origin", origin)

	task, err := r.rebuild(stored)
	if err != nil {
		logger.Error("failed to restore task", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, stored.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to mark unrestorable task as failed", "error", updateErr)
		}
		return
	}

	if err := r.queue.Enqueue(task); err != nil {
		logger.Error("failed to requeue task", "error", err)
		return
	}
	logger.Info("requeued task")
}

// processTask is the worker pool handler. It keeps the stored status in step
// with the execution.
func (r *TaskRunner) processTask(ctx context.Context, task Task) error {
	logger := r.logger.With("task_id", task.ID(), "task_type", task.Type())

	if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusProcessing, ""); err != nil {
		return fmt.Errorf("failed to update task status to processing: %w", err)
	}

	logger.Info("processing task")

	err := execute(ctx, task)

	// Status updates must outlive a shutdown that cancelled the task.
	bg := context.WithoutCancel(ctx)
	switch {
	case err != nil && ctx.Err() != nil:
		logger.Warn("task interrupted by shutdown", "error", err)
		return nil
	case err != nil:
		if updateErr := r.store.UpdateTaskStatus(bg, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to update task status to failed", "error", updateErr)
		}
		return err
	default:
		logger.Info("task completed successfully")
		if updateErr := r.store.UpdateTaskStatus(bg, task.ID(), TaskStatusCompleted, ""); updateErr != nil {
			logger.Error("failed to update task status to completed", "error", updateErr)
		}
		return nil
	}
}

func execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Execute(ctx)
}

// stuckTaskMonitor periodically resets tasks that have been in "processing"
// state for too long and queues them again.
func (r *TaskRunner) stuckTaskMonitor(ctx context.Context) {
	defer r.monitor.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			r.resetStuckTasks(ctx)
		}
	}
}

func (r *TaskRunner) resetStuckTasks(ctx context.Context) {
	stuckTasks, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuckTasks) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuckTasks))
	for _, task := range stuckTasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck task status",
				"task_id", task.ID(),
				"task_type", task.Type(),
				"error", err)
			continue
		}
		r.requeue(ctx, task, "stuck")
	}
}
