package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/manifest"
)

// TokenRequest is the payload of POST /api/auth/token.
type TokenRequest struct {
	ClientID     string `json:"client_id"     validate:"required,uuid"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// CreateRunRequest is the JSON form of POST /api/runs.
type CreateRunRequest struct {
	SRSName string `json:"srs_name" validate:"max=255"`
	SRSText string `json:"srs_text" validate:"required"`
}

// RunResponse describes a pipeline run. The SRS content itself is omitted.
type RunResponse struct {
	ID          uuid.UUID `json:"id"`
	SRSName     string    `json:"srs_name"`
	ProjectName string    `json:"project_name"`
	Status      string    `json:"status"`
	CurrentNode string    `json:"current_node,omitempty"`
	Logs        []string  `json:"logs"`
	Errors      []string  `json:"errors"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListRunsResponse is a page of runs.
type ListRunsResponse struct {
	Runs   []RunResponse `json:"runs"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ArtifactResponse describes a generated file.
type ArtifactResponse struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"created_at"`
}

// ConflictResponse is one unsatisfiable pair in a manifest.
type ConflictResponse struct {
	Package string `json:"package"`
	First   string `json:"first"`
	Second  string `json:"second"`
	Reason  string `json:"reason"`
}

// ManifestValidationResponse reports the result of validating a manifest.
type ManifestValidationResponse struct {
	Valid        bool               `json:"valid"`
	Requirements int                `json:"requirements"`
	InvalidLines []string           `json:"invalid_lines,omitempty"`
	Conflicts    []ConflictResponse `json:"conflicts,omitempty"`
}

func runToResponse(run *domain.Run) RunResponse {
	logs, errs := run.Logs, run.Errors
	if logs == nil {
		logs = []string{}
	}
	if errs == nil {
		errs = []string{}
	}
	return RunResponse{
		ID:          run.ID,
		SRSName:     run.SRSName,
		ProjectName: run.ProjectName,
		Status:      string(run.Status),
		CurrentNode: run.CurrentNode,
		Logs:        logs,
		Errors:      errs,
		CreatedAt:   run.CreatedAt,
		UpdatedAt:   run.UpdatedAt,
	}
}

func artifactToResponse(a *domain.Artifact) ArtifactResponse {
	return ArtifactResponse{
		Path:      a.Path,
		Kind:      string(a.Kind),
		Size:      a.Size,
		SHA256:    a.SHA256,
		CreatedAt: a.CreatedAt,
	}
}

func conflictToResponse(c manifest.Conflict) ConflictResponse {
	return ConflictResponse{
		Package: c.Package,
		First:   c.First.String(),
		Second:  c.Second.String(),
		Reason:  c.Reason,
	}
}
