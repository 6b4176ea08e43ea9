package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceRun(t *testing.T) {
	runID := uuid.New()

	root, err := NewTraceRun(runID, nil, "pipeline", map[string]any{"srs": "doc.txt"})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)
	assert.Equal(t, runID, root.RunID)
	assert.Zero(t, root.Duration())

	child, err := NewTraceRun(runID, root, "srs_parser", nil)
	require.NoError(t, err)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err = NewTraceRun(runID, nil, "", nil)
	assert.ErrorIs(t, err, ErrTraceRunNameEmpty)
}

func TestTraceRunEnd(t *testing.T) {
	tr, err := NewTraceRun(uuid.New(), nil, "code_generator", nil)
	require.NoError(t, err)

	tr.End(map[string]any{"files": 3}, errors.New("boom"))

	require.NotNil(t, tr.EndedAt)
	assert.Equal(t, "boom", tr.Error)
	assert.Equal(t, 3, tr.Outputs["files"])
	assert.GreaterOrEqual(t, tr.Duration().Nanoseconds(), int64(0))
}
