package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
)

// ClientStore defines the interface for API client persistence.
type ClientStore interface {
	// Create saves a new client.
	// Returns ErrClientNameExists if the name is taken.
	Create(ctx context.Context, client *domain.Client) error

	// GetByID retrieves a client by ID.
	// Returns ErrClientNotFound if the client does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)

	// GetByName retrieves a client by name.
	// Returns ErrClientNotFound if the client does not exist.
	GetByName(ctx context.Context, name string) (*domain.Client, error)

	// WithTx returns a ClientStore that uses the provided transaction.
	WithTx(tx *sql.Tx) ClientStore
}
