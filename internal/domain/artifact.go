package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ArtifactKind classifies a generated file.
type ArtifactKind string

// Artifact kinds
const (
	ArtifactModel    ArtifactKind = "model"
	ArtifactRoute    ArtifactKind = "route"
	ArtifactService  ArtifactKind = "service"
	ArtifactTest     ArtifactKind = "test"
	ArtifactDoc      ArtifactKind = "doc"
	ArtifactScaffold ArtifactKind = "scaffold"
)

// Common validation errors for Artifact
var (
	ErrArtifactRunIDEmpty  = errors.New("artifact run ID cannot be empty")
	ErrArtifactPathEmpty   = errors.New("artifact path cannot be empty")
	ErrInvalidArtifactKind = errors.New("invalid artifact kind")
)

// Artifact records a file written by a pipeline run.
type Artifact struct {
	ID        uuid.UUID    `json:"id"`
	RunID     uuid.UUID    `json:"run_id"`
	Path      string       `json:"path"`
	Kind      ArtifactKind `json:"kind"`
	Size      int64        `json:"size"`
	SHA256    string       `json:"sha256"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewArtifact describes content written to path (relative to the project
// root) during the given run.
func NewArtifact(runID uuid.UUID, path string, kind ArtifactKind, content []byte) (*Artifact, error) {
	sum := sha256.Sum256(content)
	a := &Artifact{
		ID:        uuid.New(),
		RunID:     runID,
		Path:      path,
		Kind:      kind,
		Size:      int64(len(content)),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the Artifact has valid data.
func (a *Artifact) Validate() error {
	if a.RunID == uuid.Nil {
		return ErrArtifactRunIDEmpty
	}
	if a.Path == "" {
		return ErrArtifactPathEmpty
	}
	switch a.Kind {
	case ArtifactModel, ArtifactRoute, ArtifactService, ArtifactTest, ArtifactDoc, ArtifactScaffold:
		return nil
	default:
		return ErrInvalidArtifactKind
	}
}
