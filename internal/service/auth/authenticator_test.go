package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/phrazzld/srsforge/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthenticator_Validation(t *testing.T) {
	clients := mocks.NewMockClientStore()
	verifier := &mocks.MockSecretVerifier{}
	tokens := &mocks.MockJWTService{}

	_, err := auth.NewAuthenticator(nil, verifier, tokens, nil)
	assert.Error(t, err)
	_, err = auth.NewAuthenticator(clients, nil, tokens, nil)
	assert.Error(t, err)
	_, err = auth.NewAuthenticator(clients, verifier, nil, nil)
	assert.Error(t, err)

	a, err := auth.NewAuthenticator(clients, verifier, tokens, nil)
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestAuthenticator_Authenticate(t *testing.T) {
	client, err := domain.NewClient("acme", "stored-hash")
	require.NoError(t, err)

	tests := []struct {
		name        string
		clientID    uuid.UUID
		lookupErr   error
		secretOK    bool
		tokenErr    error
		wantErr     error
		wantCompare int
	}{
		{name: "valid credentials", clientID: client.ID, secretOK: true, wantCompare: 1},
		{name: "unknown client", clientID: uuid.New(), wantErr: auth.ErrInvalidCredentials},
		{name: "wrong secret", clientID: client.ID, secretOK: false, wantErr: auth.ErrInvalidCredentials, wantCompare: 1},
		{name: "store failure", clientID: client.ID, lookupErr: errors.New("db down"), wantCompare: 0},
		{name: "signing failure", clientID: client.ID, secretOK: true, tokenErr: errors.New("sign failed"), wantCompare: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clients := mocks.NewMockClientStore(client)
			if tt.lookupErr != nil {
				clients.GetByIDFn = func(context.Context, uuid.UUID) (*domain.Client, error) {
					return nil, tt.lookupErr
				}
			}
			verifier := &mocks.MockSecretVerifier{ShouldSucceed: tt.secretOK}
			tokens := &mocks.MockJWTService{Token: "signed", Err: tt.tokenErr, Lifetime: 15 * time.Minute}

			a, err := auth.NewAuthenticator(clients, verifier, tokens, nil)
			require.NoError(t, err)

			before := time.Now()
			tok, err := a.Authenticate(context.Background(), tt.clientID, "presented")
			assert.Equal(t, tt.wantCompare, verifier.CompareCallCount)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, tok)
			case tt.lookupErr != nil:
				assert.ErrorIs(t, err, tt.lookupErr)
			case tt.tokenErr != nil:
				assert.ErrorIs(t, err, tt.tokenErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, "signed", tok.AccessToken)
				assert.WithinDuration(t, before.Add(15*time.Minute), tok.ExpiresAt, 5*time.Second)
				assert.Equal(t, "stored-hash", verifier.CompareCalledWith.Hash)
				assert.Equal(t, "presented", verifier.CompareCalledWith.Secret)
			}
		})
	}
}
