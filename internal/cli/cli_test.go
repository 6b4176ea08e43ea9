package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/srsforge/internal/cli"
	"github.com/phrazzld/srsforge/internal/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCmd("1.2.3")
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "forge 1.2.3\n", out)
}

func TestManifestCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		wantOut string
	}{
		{
			name:    "valid",
			content: "# Core\nfastapi>=0.109.0\nuvicorn[standard]>=0.27.0\n",
			wantOut: "2 requirements, no conflicts",
		},
		{
			name:    "malformed line",
			content: "fastapi>=0.109.0\nfastapi\n",
			wantErr: cli.ErrInvalidManifest,
			wantOut: `line 2: invalid requirement "fastapi"`,
		},
		{
			name:    "conflict",
			content: "langgraph==0.3.30\nlanggraph==0.2.0\n",
			wantErr: cli.ErrInvalidManifest,
			wantOut: "different exact pins",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "requirements.txt", tc.content)

			out, err := executeCommand(t, "manifest", "check", path)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out, tc.wantOut)
		})
	}
}

func TestManifestCheckMissingFile(t *testing.T) {
	_, err := executeCommand(t, "manifest", "check", filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManifestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")

	_, err := executeCommand(t, "manifest", "init", "--output", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(manifest.Render(manifest.Default())), string(data))

	_, err = executeCommand(t, "manifest", "init", "--output", path)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	_, err = executeCommand(t, "manifest", "init", "--output", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))
}

func TestRunMissingDocument(t *testing.T) {
	_, err := executeCommand(t, "run", filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorContains(t, err, "failed to read SRS document")
}

func TestRunEmptyDocument(t *testing.T) {
	path := writeFile(t, "empty.md", "   \n")
	_, err := executeCommand(t, "run", path)
	assert.ErrorContains(t, err, "empty SRS content")
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"run without file", []string{"run"}},
		{"migrate unknown command", []string{"migrate", "sideways"}},
		{"migrate without command", []string{"migrate"}},
		{"client create without name", []string{"client", "create"}},
		{"version with args", []string{"version", "extra"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCommand(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestRunReportsFailedPipeline(t *testing.T) {
	// Nothing listens on port 1, so the SRS parser fails without retries.
	t.Setenv("FORGE_LLM_PROVIDER", "groq")
	t.Setenv("FORGE_LLM_GROQ_API_KEY", "test-key")
	t.Setenv("FORGE_LLM_GROQ_BASE_URL", "http://127.0.0.1:1/v1")
	t.Setenv("FORGE_LLM_MAX_RETRIES", "0")
	t.Setenv("FORGE_LLM_REQUESTS_PER_SECOND", "0")
	t.Setenv("FORGE_TRACING_STORE_ENABLED", "false")
	t.Setenv("FORGE_TRACING_OTLP_ENDPOINT", "")

	path := writeFile(t, "srs.md", "The system manages users.")
	workspace := t.TempDir()

	out, err := executeCommand(t, "run", path, "--workspace", workspace)

	assert.ErrorIs(t, err, cli.ErrRunFailed)
	assert.ErrorContains(t, err, "SRS parsing error")
	assert.Contains(t, out, "Workflow failed")
	assert.NotContains(t, out, "project written to")
}
