package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockRunStore is a mock of store.RunStore for use with testify/mock
type TestifyMockRunStore struct {
	mock.Mock
}

var _ store.RunStore = (*TestifyMockRunStore)(nil)

// Create is a mock implementation of store.RunStore.Create
func (m *TestifyMockRunStore) Create(ctx context.Context, run *domain.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetByID is a mock implementation of store.RunStore.GetByID
func (m *TestifyMockRunStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Run), args.Error(1)
}

// ListByClient is a mock implementation of store.RunStore.ListByClient
func (m *TestifyMockRunStore) ListByClient(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*domain.Run, error) {
	args := m.Called(ctx, clientID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Run), args.Error(1)
}

// UpdateStatus is a mock implementation of store.RunStore.UpdateStatus
func (m *TestifyMockRunStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// UpdateProgress is a mock implementation of store.RunStore.UpdateProgress
func (m *TestifyMockRunStore) UpdateProgress(ctx context.Context, id uuid.UUID, currentNode string, logs, errs []string) error {
	args := m.Called(ctx, id, currentNode, logs, errs)
	return args.Error(0)
}

// WithTx is a mock implementation of store.RunStore.WithTx. It returns the
// mock itself so expectations set on it keep applying inside transactions.
func (m *TestifyMockRunStore) WithTx(*sql.Tx) store.RunStore {
	return m
}
