package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/store"
)

// Token is an issued access token.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ClientLookup is the part of store.ClientStore the authenticator needs.
type ClientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
}

// Authenticator exchanges client credentials for access tokens.
type Authenticator struct {
	clients  ClientLookup
	verifier SecretVerifier
	tokens   JWTService
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(clients ClientLookup, verifier SecretVerifier, tokens JWTService, logger *slog.Logger) (*Authenticator, error) {
	if clients == nil {
		return nil, errors.New("client lookup cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("secret verifier cannot be nil")
	}
	if tokens == nil {
		return nil, errors.New("jwt service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		clients:  clients,
		verifier: verifier,
		tokens:   tokens,
		logger:   logger.With("component", "authenticator"),
		now:      time.Now,
	}, nil
}

// Authenticate verifies clientID and secret and issues an access token.
// Unknown clients and wrong secrets both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, clientID uuid.UUID, secret string) (*Token, error) {
	log := logger.FromContextOrDefault(ctx, a.logger)

	client, err := a.clients.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrClientNotFound) {
			log.Debug("authentication failed: unknown client", "client_id", clientID)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}

	if err := a.verifier.Compare(client.SecretHash, secret); err != nil {
		log.Debug("authentication failed: secret mismatch", "client_id", clientID)
		return nil, ErrInvalidCredentials
	}

	issued := a.now()
	token, err := a.tokens.GenerateToken(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	log.Info("client authenticated", "client_id", client.ID)
	return &Token{AccessToken: token, ExpiresAt: issued.Add(a.tokens.TokenLifetime())}, nil
}
