package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/api"
	"github.com/phrazzld/srsforge/internal/api/shared"
	"github.com/phrazzld/srsforge/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

func TestTokenHandler(t *testing.T) {
	t.Parallel()

	validBody := map[string]string{"client_id": uuid.NewString(), "client_secret": "s3cret"}

	tests := []struct {
		name       string
		body       []byte
		issuerErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "issues token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed JSON",
			body:       []byte(`{"client_id":`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "unknown field",
			body:       []byte(`{"client_id":"x","client_secret":"y","extra":1}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "client id not a uuid",
			body:       []byte(`{"client_id":"nope","client_secret":"y"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid client_id: must be a UUID",
		},
		{
			name:       "missing secret",
			body:       []byte(`{"client_id":"` + uuid.NewString() + `"}`),
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid client_secret: required field",
		},
		{
			name:       "bad credentials",
			issuerErr:  auth.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid client credentials",
		},
		{
			name:       "issuer failure",
			issuerErr:  errors.New("signing failed"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Failed to issue token",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t)
			srv.issuer.err = tc.issuerErr

			body := tc.body
			if body == nil {
				body = mustJSON(t, validBody)
			}
			rec := srv.do(t, http.MethodPost, "/api/auth/token", "application/json", body, false)

			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
			if tc.wantError != "" {
				resp := decodeBody[shared.ErrorResponse](t, rec)
				assert.Equal(t, tc.wantError, resp.Error)
				assert.NotEmpty(t, resp.TraceID)
				return
			}
			resp := decodeBody[api.TokenResponse](t, rec)
			assert.Equal(t, "issued", resp.AccessToken)
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.Equal(t, "2026-01-02T03:04:05Z", resp.ExpiresAt)
		})
	}
}
