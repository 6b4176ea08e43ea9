package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/phrazzld/srsforge/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorProjectDir(t *testing.T) {
	t.Parallel()

	e := NewExecutor(ExecutorConfig{WorkspaceDir: "/work"}, Deps{})
	id := uuid.New()

	tests := []struct {
		name    string
		project string
		want    string
		wantErr bool
	}{
		{name: "plain name", project: "generated_api", want: filepath.Join("/work", id.String(), "generated_api")},
		{name: "empty", project: "", wantErr: true},
		{name: "parent", project: "..", wantErr: true},
		{name: "nested", project: "a/b", wantErr: true},
		{name: "windows separator", project: `a\b`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.ProjectDir(&domain.Run{ID: id, ProjectName: tc.project})
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidProjectName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExecutorExecute(t *testing.T) {
	t.Parallel()

	workspace := t.TempDir()
	artifacts := &memArtifacts{}
	e := NewExecutor(ExecutorConfig{WorkspaceDir: workspace, Concurrency: 2}, Deps{
		LLM:       scriptedLLM(),
		Tests:     &fakeTests{},
		Artifacts: artifacts,
	})

	run, err := domain.NewRun(uuid.New(), "srs.txt", "An SRS document", "inventory_api")
	require.NoError(t, err)

	var visited []string
	observer := &recordingObserver{started: func(node string) { visited = append(visited, node) }}

	s, err := e.Execute(context.Background(), run, workflow.WithObserver(observer))
	require.NoError(t, err)
	assert.False(t, s.Failed(), "errors: %v", s.Errors)
	assert.Equal(t, run.ID, s.RunID)
	assert.Equal(t, s.Visited, visited)

	main := filepath.Join(workspace, run.ID.String(), "inventory_api", "app", "main.py")
	_, err = os.Stat(main)
	assert.NoError(t, err)
	assert.Contains(t, artifacts.paths(), "app/main.py")
}

// writeDocx writes a minimal .docx with one paragraph per line.
func writeDocx(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	var body strings.Builder
	for _, l := range lines {
		body.WriteString("<w:p><w:r><w:t>" + l + "</w:t></w:r></w:p>")
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "private.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func analysisPrompt(t *testing.T, client *mocks.MockLLMClient) string {
	t.Helper()
	for _, p := range client.Prompts() {
		if strings.Contains(p, "Software Requirements Specification") {
			return p
		}
	}
	t.Fatal("no analysis prompt sent")
	return ""
}

func TestExecutorTreatsRunContentAsText(t *testing.T) {
	t.Parallel()

	path := writeDocx(t, t.TempDir(), "Payroll secrets")
	client := scriptedLLM()
	e := NewExecutor(ExecutorConfig{WorkspaceDir: t.TempDir()}, Deps{LLM: client, Tests: &fakeTests{}})

	run, err := domain.NewRun(uuid.New(), "upload.txt", path, "inventory_api")
	require.NoError(t, err)

	s, err := e.Execute(context.Background(), run)
	require.NoError(t, err)
	assert.False(t, s.Failed(), "errors: %v", s.Errors)

	prompt := analysisPrompt(t, client)
	assert.Contains(t, prompt, path)
	assert.NotContains(t, prompt, "Payroll secrets")
}

func TestExecutorExecuteFileLoadsDocx(t *testing.T) {
	t.Parallel()

	path := writeDocx(t, t.TempDir(), "Library System SRS", "Users can borrow books.")
	client := scriptedLLM()
	e := NewExecutor(ExecutorConfig{WorkspaceDir: t.TempDir()}, Deps{LLM: client, Tests: &fakeTests{}})
	run := &domain.Run{ID: uuid.New(), SRSName: "private.docx", ProjectName: "library_api"}

	s, err := e.ExecuteFile(context.Background(), run, path)
	require.NoError(t, err)
	assert.False(t, s.Failed(), "errors: %v", s.Errors)
	assert.Equal(t, "private.docx", s.SRSPath)
	assert.Contains(t, analysisPrompt(t, client), "Library System SRS\nUsers can borrow books.")
}

func TestExecutorStepLimit(t *testing.T) {
	t.Parallel()

	e := NewExecutor(ExecutorConfig{WorkspaceDir: t.TempDir(), MaxSteps: 2}, Deps{
		LLM:   scriptedLLM(),
		Tests: &fakeTests{},
	})
	run, err := domain.NewRun(uuid.New(), "srs.txt", "An SRS document", "generated_api")
	require.NoError(t, err)

	_, err = e.Execute(context.Background(), run)
	assert.ErrorIs(t, err, workflow.ErrStepLimit)
}

type recordingObserver struct {
	started func(node string)
}

func (o *recordingObserver) NodeStarted(ctx context.Context, node string, _ *workflow.State) context.Context {
	o.started(node)
	return ctx
}

func (o *recordingObserver) NodeFinished(context.Context, string, *workflow.State, string, error) {}
