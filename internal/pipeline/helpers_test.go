package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/phrazzld/srsforge/internal/platform/logger"
	"github.com/phrazzld/srsforge/internal/provision"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{
  "functional_requirements": ["User registration"],
  "api_endpoints": [{"path": "/api/users", "method": "post", "description": "Create user"}],
  "db_schema": {"tables": [{"name": "users", "fields": ["id", "email"]}]},
  "auth_requirements": {"type": "JWT", "features": ["RBAC"]}
}`

// scriptedLLM answers the analysis prompt with analysisJSON and every other
// prompt with a fenced Python file.
func scriptedLLM() *mocks.MockLLMClient {
	return &mocks.MockLLMClient{
		CompleteFn: func(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
			if strings.Contains(prompt, "Software Requirements Specification") {
				return "Here you go:\n" + analysisJSON, nil
			}
			return "```python\n# generated\n```", nil
		},
	}
}

// fakeTests returns scripted results, repeating the last one.
type fakeTests struct {
	mu      sync.Mutex
	results []provision.TestResult
	calls   int
	err     error
}

func (f *fakeTests) RunTests(context.Context, string, string) (provision.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return provision.TestResult{}, f.err
	}
	if len(f.results) == 0 {
		return provision.TestResult{Passed: true}, nil
	}
	i := f.calls - 1
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

type memArtifacts struct {
	mu    sync.Mutex
	saved []*domain.Artifact
}

func (m *memArtifacts) Save(_ context.Context, a *domain.Artifact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, a)
	return nil
}

func (m *memArtifacts) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.saved))
	for _, a := range m.saved {
		out = append(out, a.Path)
	}
	return out
}

type fixture struct {
	pipeline  *Pipeline
	llm       *mocks.MockLLMClient
	tests     *fakeTests
	artifacts *memArtifacts
	logs      *logger.Buffer
}

func newFixture(t *testing.T, client *mocks.MockLLMClient, tests *fakeTests) *fixture {
	t.Helper()
	log, buf := logger.NewBufferLogger(slog.LevelDebug)
	artifacts := &memArtifacts{}
	p, err := New(Config{
		ProjectDir:  filepath.Join(t.TempDir(), "generated_api"),
		Concurrency: 2,
	}, Deps{
		LLM:       client,
		Tests:     tests,
		Artifacts: artifacts,
		Logger:    log,
	})
	require.NoError(t, err)
	return &fixture{pipeline: p, llm: client, tests: tests, artifacts: artifacts, logs: buf}
}
