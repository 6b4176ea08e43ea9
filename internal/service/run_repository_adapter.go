package service

import (
	"database/sql"

	"github.com/phrazzld/srsforge/internal/store"
)

// RunRepositoryAdapter adapts a store.RunStore and its database handle to
// RunRepository.
type RunRepositoryAdapter struct {
	store.RunStore
	db *sql.DB
}

// NewRunRepositoryAdapter creates a new adapter that implements RunRepository
// by delegating to a store.RunStore implementation.
func NewRunRepositoryAdapter(runStore store.RunStore, db *sql.DB) *RunRepositoryAdapter {
	return &RunRepositoryAdapter{RunStore: runStore, db: db}
}

var _ RunRepository = (*RunRepositoryAdapter)(nil)

// WithTx returns an adapter whose store runs inside tx.
func (a *RunRepositoryAdapter) WithTx(tx *sql.Tx) RunRepository {
	return &RunRepositoryAdapter{RunStore: a.RunStore.WithTx(tx), db: a.db}
}

// DB returns the underlying database connection.
func (a *RunRepositoryAdapter) DB() *sql.DB {
	return a.db
}
