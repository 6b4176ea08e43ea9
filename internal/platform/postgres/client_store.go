package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/store"
)

// PostgresClientStore implements the store.ClientStore interface.
type PostgresClientStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresClientStore creates a new PostgreSQL implementation of the ClientStore interface.
func NewPostgresClientStore(db store.DBTX, logger *slog.Logger) *PostgresClientStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClientStore{
		db:     db,
		logger: logger.With(slog.String("component", "client_store")),
	}
}

var _ store.ClientStore = (*PostgresClientStore)(nil)

// Create implements store.ClientStore.Create.
// Returns store.ErrClientNameExists if the name is taken.
func (s *PostgresClientStore) Create(ctx context.Context, c *domain.Client) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, secret_hash, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.SecretHash, c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("client name already exists", slog.String("name", c.Name))
			return store.ErrClientNameExists
		}
		log.Error("failed to create client", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Info("client created successfully", slog.String("client_id", c.ID.String()))
	return nil
}

// GetByID implements store.ClientStore.GetByID.
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return s.get(ctx, `SELECT id, name, secret_hash, created_at FROM clients WHERE id = $1`, id)
}

// GetByName implements store.ClientStore.GetByName.
// Returns store.ErrClientNotFound if the client does not exist.
func (s *PostgresClientStore) GetByName(ctx context.Context, name string) (*domain.Client, error) {
	return s.get(ctx, `SELECT id, name, secret_hash, created_at FROM clients WHERE name = $1`, name)
}

func (s *PostgresClientStore) get(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var c domain.Client
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.SecretHash, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrClientNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get client", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &c, nil
}

// WithTx implements store.ClientStore.WithTx.
func (s *PostgresClientStore) WithTx(tx *sql.Tx) store.ClientStore {
	return &PostgresClientStore{db: tx, logger: s.logger}
}
