package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderRoundTrip(t *testing.T) {
	original, err := ParseString(sampleManifest)
	require.NoError(t, err)

	reparsed, err := Parse(strings.NewReader(string(Render(original))))
	require.NoError(t, err)

	assert.Equal(t, original, reparsed)
}

func TestRenderRoundTripKeepsGroups(t *testing.T) {
	req := func(name, version string) Requirement {
		return Requirement{Name: name, Operator: OpMinimum, Version: version}
	}

	tests := []struct {
		name   string
		groups []Group
		want   map[string]string
	}{
		{
			name: "group without requirements",
			groups: []Group{
				{Header: "Testing"},
				{Header: "Database", Requirements: []Requirement{req("alembic", "1.13.1")}},
			},
			want: map[string]string{"alembic": "Database"},
		},
		{
			name: "headerless group after a named group",
			groups: []Group{
				{Header: "Core", Requirements: []Requirement{req("fastapi", "0.109.0")}},
				{Header: "", Requirements: []Requirement{req("httpx", "0.26.0")}},
			},
			want: map[string]string{"fastapi": "Core", "httpx": ""},
		},
		{
			name: "two headerless groups",
			groups: []Group{
				{Header: "", Requirements: []Requirement{req("a", "1.0")}},
				{Header: "Core", Requirements: []Requirement{req("b", "1.0")}},
				{Header: "", Requirements: []Requirement{req("c", "1.0")}},
			},
			want: map[string]string{"a": "", "b": "Core", "c": ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reparsed, err := ParseString(string(Render(&Manifest{Groups: tc.groups})))
			require.NoError(t, err)

			got := map[string]string{}
			for _, r := range reparsed.Requirements() {
				got[r.Name] = r.Group
			}
			assert.Equal(t, tc.want, got)
			for _, g := range reparsed.Groups {
				assert.NotEmpty(t, g.Requirements, "group %q", g.Header)
			}
		})
	}
}

func TestRenderEmptyManifest(t *testing.T) {
	assert.Empty(t, Render(&Manifest{}))
	assert.Empty(t, Render(&Manifest{Groups: []Group{{Header: "Testing"}}}))
}

func TestRenderFormat(t *testing.T) {
	m := &Manifest{}
	m.Add("Core dependencies", Requirement{Name: "uvicorn", Extras: []string{"standard"}, Operator: OpMinimum, Version: "0.27.0"})
	m.Add("Testing", Requirement{Name: "pytest", Operator: OpMinimum, Version: "7.4.4"})

	want := "# Core dependencies\nuvicorn[standard]>=0.27.0\n\n# Testing\npytest>=7.4.4\n"
	assert.Equal(t, want, string(Render(m)))
}

func TestDefault(t *testing.T) {
	m := Default()

	headers := make([]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		headers = append(headers, g.Header)
	}
	assert.Equal(t, []string{GroupCore, GroupDatabase, GroupAI, GroupTesting, GroupDocumentation}, headers)

	var pins []Requirement
	for _, r := range m.Requirements() {
		if r.Operator == OpExact {
			pins = append(pins, r)
		}
	}
	require.Len(t, pins, 1)
	assert.Equal(t, "langgraph==0.3.30", pins[0].String())

	require.NoError(t, m.Validate())

	reparsed, err := Parse(strings.NewReader(string(Render(m))))
	require.NoError(t, err)
	assert.Len(t, reparsed.Requirements(), len(m.Requirements()))
	require.NoError(t, reparsed.Validate())
}
