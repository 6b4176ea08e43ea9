package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Client
var (
	ErrEmptyClientID     = errors.New("client ID cannot be empty")
	ErrEmptyClientName   = errors.New("client name cannot be empty")
	ErrClientNameTooLong = errors.New("client name must be at most 100 characters long")
	ErrEmptySecretHash   = errors.New("client secret hash cannot be empty")
)

// Client is an API consumer allowed to submit runs. Clients authenticate
// with their ID and a secret that is only stored as a bcrypt hash.
type Client struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewClient creates a Client with the given name and secret hash.
func NewClient(name, secretHash string) (*Client, error) {
	c := &Client{
		ID:         uuid.New(),
		Name:       name,
		SecretHash: secretHash,
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Client has valid data.
func (c *Client) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyClientID
	}
	if c.Name == "" {
		return ErrEmptyClientName
	}
	if len(c.Name) > 100 {
		return ErrClientNameTooLong
	}
	if c.SecretHash == "" {
		return ErrEmptySecretHash
	}
	return nil
}
