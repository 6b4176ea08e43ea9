package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/service/auth"
	"github.com/phrazzld/srsforge/internal/store"
)

// ClientService registers API clients.
type ClientService struct {
	clients    store.ClientStore
	bcryptCost int
	logger     *slog.Logger
}

// NewClientService creates a ClientService. A bcryptCost of zero uses the
// bcrypt default.
func NewClientService(clients store.ClientStore, bcryptCost int, logger *slog.Logger) (*ClientService, error) {
	if clients == nil {
		return nil, newClientServiceError("create_service", "clients cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientService{
		clients:    clients,
		bcryptCost: bcryptCost,
		logger:     logger.With("component", "client_service"),
	}, nil
}

// CreateClient registers a client under name and returns it together with
// its plaintext secret. The secret is not stored and cannot be recovered.
func (s *ClientService) CreateClient(ctx context.Context, name string) (*domain.Client, string, error) {
	secret, err := auth.GenerateSecret()
	if err != nil {
		return nil, "", newClientServiceError("create_client", "failed to generate secret", err)
	}
	hash, err := auth.HashSecret(secret, s.bcryptCost)
	if err != nil {
		return nil, "", newClientServiceError("create_client", "failed to hash secret", err)
	}

	client, err := domain.NewClient(name, hash)
	if err != nil {
		return nil, "", err
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errors.Is(err, store.ErrClientNameExists) {
			return nil, "", ErrClientNameTaken
		}
		return nil, "", newClientServiceError("create_client", "failed to save client", err)
	}

	s.logger.Info("client registered", "client_id", client.ID, "name", client.Name)
	return client, secret, nil
}
