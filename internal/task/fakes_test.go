package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// stubTask runs ExecuteFn and counts how often it was called.
type stubTask struct {
	Record
	ExecuteFn func(ctx context.Context) error
	calls     atomic.Int32
}

func newStubTask(id uuid.UUID, taskType string, payload []byte) *stubTask {
	return &stubTask{
		Record: Record{
			TaskID:      id,
			TaskType:    taskType,
			TaskPayload: payload,
			TaskStatus:  TaskStatusPending,
		},
		ExecuteFn: func(context.Context) error { return nil },
	}
}

// newRunTask builds a stub whose payload names runID, like a pipeline task.
func newRunTask(runID uuid.UUID) *stubTask {
	data, _ := json.Marshal(pipelinePayload{RunID: runID})
	return newStubTask(uuid.New(), "stub", data)
}

func (t *stubTask) Execute(ctx context.Context) error {
	t.calls.Add(1)
	return t.ExecuteFn(ctx)
}

func (t *stubTask) Executions() int { return int(t.calls.Load()) }

// memStore is an in-memory TaskStore. SaveFn and UpdateFn, when set, run
// first and can inject failures.
type memStore struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*Record
	order     []uuid.UUID
	saveCalls int

	SaveFn   func(ctx context.Context, t Task) error
	UpdateFn func(ctx context.Context, id uuid.UUID, status TaskStatus, msg string) error
}

func newMemStore() *memStore {
	return &memStore{records: map[uuid.UUID]*Record{}}
}

// Seed stores rec as if an earlier process had saved it.
func (s *memStore) Seed(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(rec)
}

func (s *memStore) put(rec *Record) {
	if _, ok := s.records[rec.TaskID]; !ok {
		s.order = append(s.order, rec.TaskID)
	}
	s.records[rec.TaskID] = rec
}

func (s *memStore) SaveTask(ctx context.Context, t Task) error {
	if s.SaveFn != nil {
		if err := s.SaveFn(ctx, t); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	now := time.Now()
	s.put(&Record{
		TaskID:      t.ID(),
		TaskType:    t.Type(),
		TaskPayload: t.Payload(),
		TaskStatus:  t.Status(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return nil
}

func (s *memStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status TaskStatus, msg string) error {
	if s.UpdateFn != nil {
		if err := s.UpdateFn(ctx, id, status, msg); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.records[id]; ok {
		rec.TaskStatus = status
		rec.ErrorMessage = msg
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *memStore) GetPendingTasks(context.Context) ([]Task, error) {
	return s.withStatus(TaskStatusPending, 0), nil
}

func (s *memStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Task, error) {
	return s.withStatus(TaskStatusProcessing, olderThan), nil
}

func (s *memStore) withStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, id := range s.order {
		rec := s.records[id]
		if rec.TaskStatus != status {
			continue
		}
		if olderThan > 0 && time.Since(rec.UpdatedAt) <= olderThan {
			continue
		}
		c := *rec
		out = append(out, &c)
	}
	return out
}

func (s *memStore) Get(id uuid.UUID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

func (s *memStore) SaveCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveCalls
}

func (s *memStore) WithTx(*sql.Tx) TaskStore { return s }
