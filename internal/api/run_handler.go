package api

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/phrazzld/srsforge/internal/api/shared"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/service"
	"github.com/phrazzld/srsforge/internal/srs"
)

// MaxUploadBytes bounds uploaded SRS documents.
const MaxUploadBytes = 10 << 20

// uploadField is the multipart form field carrying the SRS document.
const uploadField = "file"

var allowedUploadExts = map[string]bool{
	".docx": true,
	".txt":  true,
	".md":   true,
}

// RunHandler handles pipeline run requests.
type RunHandler struct {
	runService service.RunService
	logger     *slog.Logger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runService service.RunService, logger *slog.Logger) *RunHandler {
	if runService == nil {
		panic("runService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RunHandler{
		runService: runService,
		logger:     logger.With(slog.String("component", "run_handler")),
	}
}

// CreateRun handles POST /api/runs. The SRS arrives either as JSON or as a
// multipart upload in the "file" field. The run is processed
// asynchronously, so the response is 202 Accepted.
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	clientID, ok := requireClientID(w, r)
	if !ok {
		return
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var (
		name, content string
		status        int
		err           error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		name, content, status, err = h.readUpload(w, r)
	} else {
		name, content, status, err = h.readJSON(w, r)
	}
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, status, uploadErrorMessage(err, status), err)
		return
	}

	run, err := h.runService.CreateRunAndEnqueue(r.Context(), clientID, name, content)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("run accepted",
		slog.String("run_id", run.ID.String()),
		slog.String("srs_name", run.SRSName))
	w.Header().Set("Location", "/api/runs/"+run.ID.String())
	shared.RespondWithJSON(w, r, http.StatusAccepted, runToResponse(run))
}

func (h *RunHandler) readJSON(w http.ResponseWriter, r *http.Request) (string, string, int, error) {
	var req CreateRunRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		return "", "", http.StatusBadRequest, errInvalidFormat{err}
	}
	if err := shared.ValidateRequest(&req); err != nil {
		return "", "", http.StatusBadRequest, err
	}
	if strings.TrimSpace(req.SRSText) == "" {
		return "", "", http.StatusBadRequest, srs.ErrEmptyDocument
	}
	return req.SRSName, req.SRSText, 0, nil
}

func (h *RunHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, string, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", "", http.StatusRequestEntityTooLarge, err
		}
		return "", "", http.StatusBadRequest, errInvalidFormat{err}
	}

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return "", "", http.StatusBadRequest, errInvalidFormat{err}
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	if !allowedUploadExts[strings.ToLower(filepath.Ext(name))] {
		return "", "", http.StatusUnsupportedMediaType, errUnsupportedType
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", "", http.StatusBadRequest, errInvalidFormat{err}
	}
	content, err := srs.Extract(name, data)
	if err != nil {
		return "", "", http.StatusBadRequest, err
	}
	return name, content, 0, nil
}

var errUnsupportedType = errors.New("unsupported SRS file type")

// errInvalidFormat marks a body that could not be decoded at all.
type errInvalidFormat struct{ err error }

func (e errInvalidFormat) Error() string { return e.err.Error() }
func (e errInvalidFormat) Unwrap() error { return e.err }

func uploadErrorMessage(err error, status int) string {
	var formatErr errInvalidFormat
	switch {
	case status == http.StatusRequestEntityTooLarge:
		return "SRS document is too large"
	case errors.Is(err, errUnsupportedType):
		return "Unsupported file type (expected .docx, .txt or .md)"
	case errors.As(err, &formatErr):
		return "Invalid request format"
	}
	if msg := GetSafeErrorMessage(err); msg != "An unexpected error occurred" {
		return msg
	}
	return SanitizeValidationError(err)
}

// GetRun handles GET /api/runs/{id}.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	clientID, runID, ok := handleClientAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	run, err := h.runService.GetRun(r.Context(), clientID, runID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, runToResponse(run))
}

// ListRuns handles GET /api/runs?limit=&offset=.
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	clientID, ok := requireClientID(w, r)
	if !ok {
		return
	}

	limit := queryInt(r, "limit", service.DefaultListLimit)
	offset := queryInt(r, "offset", 0)
	runs, err := h.runService.ListRuns(r.Context(), clientID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list runs")
		return
	}

	resp := ListRunsResponse{
		Runs:   make([]RunResponse, 0, len(runs)),
		Limit:  clampLimit(limit),
		Offset: offset,
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, runToResponse(run))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ListArtifacts handles GET /api/runs/{id}/artifacts.
func (h *RunHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	clientID, runID, ok := handleClientAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	artifacts, err := h.runService.ListArtifacts(r.Context(), clientID, runID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		resp = append(resp, artifactToResponse(a))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return service.DefaultListLimit
	case limit > service.MaxListLimit:
		return service.MaxListLimit
	default:
		return limit
	}
}
