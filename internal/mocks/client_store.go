package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/store"
)

// MockClientStore implements store.ClientStore for testing. Without Fn
// overrides it keeps clients in memory and enforces unique names.
type MockClientStore struct {
	CreateFn    func(ctx context.Context, client *domain.Client) error
	GetByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	GetByNameFn func(ctx context.Context, name string) (*domain.Client, error)

	mu      sync.Mutex
	clients map[uuid.UUID]*domain.Client
}

var _ store.ClientStore = (*MockClientStore)(nil)

// NewMockClientStore creates a mock store holding the given clients.
func NewMockClientStore(clients ...*domain.Client) *MockClientStore {
	m := &MockClientStore{clients: make(map[uuid.UUID]*domain.Client)}
	for _, c := range clients {
		m.clients[c.ID] = c
	}
	return m
}

// Create implements store.ClientStore.Create
func (m *MockClientStore) Create(ctx context.Context, client *domain.Client) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, client)
	}
	if err := client.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clients == nil {
		m.clients = make(map[uuid.UUID]*domain.Client)
	}
	for _, existing := range m.clients {
		if existing.Name == client.Name {
			return store.ErrClientNameExists
		}
	}
	c := *client
	m.clients[client.ID] = &c
	return nil
}

// GetByID implements store.ClientStore.GetByID
func (m *MockClientStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, store.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

// GetByName implements store.ClientStore.GetByName
func (m *MockClientStore) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	if m.GetByNameFn != nil {
		return m.GetByNameFn(ctx, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrClientNotFound
}

// WithTx implements store.ClientStore.WithTx
func (m *MockClientStore) WithTx(*sql.Tx) store.ClientStore {
	return m
}
