package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/srsforge/internal/api/shared"
	"github.com/phrazzld/srsforge/internal/manifest"
)

// MaxManifestBytes bounds manifest request bodies.
const MaxManifestBytes = 1 << 20

// ManifestHandler validates dependency manifests.
type ManifestHandler struct {
	logger *slog.Logger
}

// NewManifestHandler creates a new ManifestHandler.
func NewManifestHandler(logger *slog.Logger) *ManifestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ManifestHandler{logger: logger.With(slog.String("component", "manifest_handler"))}
}

// Validate handles POST /api/manifests/validate. The body is the manifest
// text. Malformed lines and conflicting pins are reported with 200 and
// valid=false; only an unreadable or empty body is a client error.
func (h *ManifestHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxManifestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge, "Manifest is too large", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if strings.TrimSpace(string(body)) == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Manifest is empty")
		return
	}

	m, err := manifest.ParseString(string(body))
	if err != nil {
		var parseErr *manifest.ParseError
		if !errors.As(err, &parseErr) {
			HandleAPIError(w, r, err, "Failed to read manifest")
			return
		}
		resp := ManifestValidationResponse{Valid: false}
		for _, l := range parseErr.Lines {
			resp.InvalidLines = append(resp.InvalidLines, l.Text)
		}
		shared.RespondWithJSON(w, r, http.StatusOK, resp)
		return
	}

	resp := ManifestValidationResponse{
		Valid:        true,
		Requirements: len(m.Requirements()),
	}
	for _, c := range m.Conflicts() {
		resp.Valid = false
		resp.Conflicts = append(resp.Conflicts, conflictToResponse(c))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
