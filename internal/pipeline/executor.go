package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/manifest"
	"github.com/phrazzld/srsforge/internal/workflow"
)

// ErrInvalidProjectName is returned for project names that are not a single
// path element.
var ErrInvalidProjectName = errors.New("invalid project name")

// ExecutorConfig controls where runs are generated.
type ExecutorConfig struct {
	// WorkspaceDir holds one directory per run.
	WorkspaceDir string
	Concurrency  int
	MaxSteps     int
	Manifest     *manifest.Manifest
}

// Executor runs the pipeline for stored runs. Each run is generated under
// <workspace>/<run id>/<project name>.
type Executor struct {
	cfg  ExecutorConfig
	deps Deps
}

// NewExecutor creates an Executor sharing deps between runs.
func NewExecutor(cfg ExecutorConfig, deps Deps) *Executor {
	return &Executor{cfg: cfg, deps: deps}
}

// ProjectDir returns the directory the run's project is written to.
func (e *Executor) ProjectDir(run *domain.Run) (string, error) {
	name := run.ProjectName
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidProjectName, name)
	}
	return filepath.Join(e.cfg.WorkspaceDir, run.ID.String(), name), nil
}

// Execute generates the project for run and returns the final state.
// run.SRSContent is always treated as document text.
func (e *Executor) Execute(ctx context.Context, run *domain.Run, opts ...workflow.Option) (*workflow.State, error) {
	return e.execute(ctx, run, workflow.NewState(run.ID, run.SRSName, run.SRSContent), opts...)
}

// ExecuteFile is Execute for a document on the local filesystem, which the
// SRS parser node loads. It is meant for the CLI; API runs carry text only.
func (e *Executor) ExecuteFile(ctx context.Context, run *domain.Run, file string, opts ...workflow.Option) (*workflow.State, error) {
	state := workflow.NewFileState(run.ID, file)
	if run.SRSName != "" {
		state.SRSPath = run.SRSName
	}
	return e.execute(ctx, run, state, opts...)
}

func (e *Executor) execute(ctx context.Context, run *domain.Run, state *workflow.State, opts ...workflow.Option) (*workflow.State, error) {
	dir, err := e.ProjectDir(run)
	if err != nil {
		return nil, err
	}
	p, err := New(Config{
		ProjectDir:  dir,
		Concurrency: e.cfg.Concurrency,
		Manifest:    e.cfg.Manifest,
	}, e.deps)
	if err != nil {
		return nil, err
	}

	opts = append([]workflow.Option{workflow.WithMaxSteps(e.cfg.MaxSteps)}, opts...)
	return p.Run(ctx, state, opts...)
}
