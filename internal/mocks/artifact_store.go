package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/store"
)

// MockArtifactStore implements store.ArtifactStore for testing
type MockArtifactStore struct {
	SaveFn      func(ctx context.Context, artifact *domain.Artifact) error
	ListByRunFn func(ctx context.Context, runID uuid.UUID) ([]*domain.Artifact, error)

	// Artifacts is returned by ListByRun when ListByRunFn is nil.
	Artifacts []*domain.Artifact
}

var _ store.ArtifactStore = (*MockArtifactStore)(nil)

// Save implements store.ArtifactStore.Save
func (m *MockArtifactStore) Save(ctx context.Context, artifact *domain.Artifact) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, artifact)
	}
	m.Artifacts = append(m.Artifacts, artifact)
	return nil
}

// ListByRun implements store.ArtifactStore.ListByRun
func (m *MockArtifactStore) ListByRun(ctx context.Context, runID uuid.UUID) ([]*domain.Artifact, error) {
	if m.ListByRunFn != nil {
		return m.ListByRunFn(ctx, runID)
	}
	var out []*domain.Artifact
	for _, a := range m.Artifacts {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

// WithTx implements store.ArtifactStore.WithTx
func (m *MockArtifactStore) WithTx(*sql.Tx) store.ArtifactStore {
	return m
}
