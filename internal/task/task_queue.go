package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded, non-blocking queue of tasks. A full queue rejects
// new work instead of applying backpressure to HTTP handlers.
type TaskQueue struct {
	mu     sync.RWMutex
	ch     chan Task
	closed bool
	logger *slog.Logger
}

var (
	_ TaskQueueReader = (*TaskQueue)(nil)
	_ TaskQueueWriter = (*TaskQueue)(nil)
)

// NewTaskQueue returns a queue holding at most size tasks. A negative size
// is treated as zero, which rejects every Enqueue without a waiting worker.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskQueue{ch: make(chan Task, max(size, 0)), logger: logger}
}

func (q *TaskQueue) Enqueue(t Task) error {
	// The read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- t:
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.ch))
	}
	q.logger.Debug("task enqueued",
		"task_id", t.ID(),
		"task_type", t.Type(),
		"queue_len", len(q.ch))
	return nil
}

// Close is idempotent. Tasks already queued stay readable.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed", "pending", len(q.ch))
}

func (q *TaskQueue) Len() int { return len(q.ch) }

func (q *TaskQueue) Tasks() <-chan Task { return q.ch }
