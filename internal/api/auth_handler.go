package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/api/shared"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/service/auth"
)

// TokenIssuer exchanges client credentials for an access token.
type TokenIssuer interface {
	Authenticate(ctx context.Context, clientID uuid.UUID, secret string) (*auth.Token, error)
}

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	issuer TokenIssuer
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(issuer TokenIssuer, logger *slog.Logger) *AuthHandler {
	if issuer == nil {
		panic("issuer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		issuer: issuer,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Token handles POST /api/auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TokenRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	// The validator already checked the UUID form.
	clientID := uuid.MustParse(req.ClientID)

	token, err := h.issuer.Authenticate(r.Context(), clientID, req.ClientSecret)
	if err != nil {
		if MapErrorToStatusCode(err) == http.StatusUnauthorized {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, GetSafeErrorMessage(err), err,
				shared.WithElevatedLogLevel())
			return
		}
		HandleAPIError(w, r, err, "Failed to issue token")
		return
	}

	log.Debug("access token issued", slog.String("client_id", clientID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
