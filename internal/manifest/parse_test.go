package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `# Core dependencies
fastapi>=0.109.0
uvicorn[standard]>=0.27.0

# Database
sqlalchemy>=2.0.25
psycopg2-binary >= 2.9.9

# LangGraph & AI
langgraph==0.3.30
`

func TestParseGroups(t *testing.T) {
	m, err := ParseString(sampleManifest)
	require.NoError(t, err)

	require.Len(t, m.Groups, 3)
	assert.Equal(t, "Core dependencies", m.Groups[0].Header)
	assert.Equal(t, "Database", m.Groups[1].Header)
	assert.Equal(t, "LangGraph & AI", m.Groups[2].Header)

	reqs := m.Requirements()
	require.Len(t, reqs, 5)

	assert.Equal(t, "uvicorn", reqs[1].Name)
	assert.Equal(t, []string{"standard"}, reqs[1].Extras)
	assert.Equal(t, OpMinimum, reqs[1].Operator)
	assert.Equal(t, "0.27.0", reqs[1].Version)
	assert.Equal(t, 3, reqs[1].Line)
	assert.Equal(t, "Core dependencies", reqs[1].Group)

	assert.Equal(t, "psycopg2-binary", reqs[3].Name)
	assert.Equal(t, "2.9.9", reqs[3].Version)

	assert.Equal(t, OpExact, reqs[4].Operator)
	assert.Equal(t, "LangGraph & AI", reqs[4].Group)
}

func TestParseLineForms(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "minimum bound", input: "fastapi>=0.109.0"},
		{name: "exact pin", input: "langgraph==0.3.30"},
		{name: "crlf line endings", input: "fastapi>=0.109.0\r\nhttpx>=0.26.0\r\n"},
		{name: "trailing whitespace", input: "fastapi>=0.109.0   \t"},
		{name: "multiple extras", input: "pkg[a, b]>=1.0"},
		{name: "only comments", input: "# Header\n\n# Another"},
		{name: "empty input", input: ""},
		{name: "less or equal rejected", input: "fastapi<=0.109.0", wantErr: true},
		{name: "compatible release rejected", input: "fastapi~=0.109", wantErr: true},
		{name: "exclusion rejected", input: "fastapi!=0.109.0", wantErr: true},
		{name: "range rejected", input: "fastapi>=0.1,<1.0", wantErr: true},
		{name: "missing version", input: "fastapi>=", wantErr: true},
		{name: "bare name", input: "fastapi", wantErr: true},
		{name: "url requirement", input: "git+https://example.com/x.git", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				var perr *ParseError
				assert.True(t, errors.As(err, &perr))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCollectsEveryBadLine(t *testing.T) {
	_, err := ParseString("ok>=1.0\nbad<=1.0\nfine==2.0\nworse\n")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Len(t, perr.Lines, 2)
	assert.Equal(t, LineError{Line: 2, Text: "bad<=1.0"}, perr.Lines[0])
	assert.Equal(t, LineError{Line: 4, Text: "worse"}, perr.Lines[1])
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseUngroupedRequirements(t *testing.T) {
	m, err := ParseString("requests>=2.0\n# Testing\npytest>=7.0\n")
	require.NoError(t, err)

	require.Len(t, m.Groups, 2)
	assert.Equal(t, "", m.Groups[0].Header)
	assert.Equal(t, "Testing", m.Groups[1].Header)
}

func TestParseConsecutiveCommentsKeepFirstHeader(t *testing.T) {
	m, err := ParseString("# Testing\n# pinned for CI\npytest>=7.0\n")
	require.NoError(t, err)

	require.Len(t, m.Groups, 1)
	assert.Equal(t, "Testing", m.Groups[0].Header)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "python-docx", NormalizeName("Python_Docx"))
	assert.Equal(t, "zope-interface", NormalizeName("zope.interface"))
	assert.Equal(t, "a-b", NormalizeName("a-_.b"))
}
