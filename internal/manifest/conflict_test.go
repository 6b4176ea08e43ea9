package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflicts(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		wantCount int
		reason    string
	}{
		{name: "no duplicates", input: "a>=1.0\nb==2.0\n"},
		{name: "same pin twice", input: "a==1.0\na==1.0.0\n"},
		{name: "two minimum bounds", input: "a>=1.0\na>=2.0\n"},
		{name: "pin above bound", input: "a>=1.0\na==1.5\n"},
		{name: "pin equal to bound", input: "a>=1.5\na==1.5\n"},
		{name: "different pins", input: "a==1.0\na==2.0\n", wantCount: 1, reason: "different exact pins"},
		{name: "pin below bound", input: "a>=2.0\na==1.5\n", wantCount: 1, reason: "pinned version is below the minimum bound"},
		{name: "pin before bound", input: "a==1.5\na>=2.0\n", wantCount: 1, reason: "pinned version is below the minimum bound"},
		{name: "names normalised", input: "Python_Docx==1.0\npython-docx==1.1\n", wantCount: 1, reason: "different exact pins"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ParseString(tc.input)
			require.NoError(t, err)

			conflicts := m.Conflicts()
			require.Len(t, conflicts, tc.wantCount)
			if tc.wantCount > 0 {
				assert.Equal(t, tc.reason, conflicts[0].Reason)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	m, err := ParseString("# AI\nlanggraph==0.3.30\n# Extra\nlanggraph==0.2.0\n")
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	var cerr *ConflictError
	require.True(t, errors.As(err, &cerr))
	require.Len(t, cerr.Conflicts, 1)
	assert.Equal(t, 2, cerr.Conflicts[0].First.Line)
	assert.Equal(t, 4, cerr.Conflicts[0].Second.Line)
	assert.Contains(t, err.Error(), "langgraph")
}
