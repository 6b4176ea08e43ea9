package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService defines operations for managing JWT access tokens issued to
// API clients.
type JWTService interface {
	// GenerateToken creates a signed access token for the client.
	GenerateToken(ctx context.Context, clientID uuid.UUID) (string, error)

	// ValidateToken validates the token string and extracts its claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime reports how long generated tokens stay valid.
	TokenLifetime() time.Duration
}

// Claims is the validated content of an access token.
type Claims struct {
	ClientID  uuid.UUID `json:"cid,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
