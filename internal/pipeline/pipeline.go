package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/manifest"
	"github.com/phrazzld/srsforge/internal/provision"
	"github.com/phrazzld/srsforge/internal/srs"
	"github.com/phrazzld/srsforge/internal/tracing"
	"github.com/phrazzld/srsforge/internal/workflow"
)

// Node names of the default pipeline.
const (
	NodeProjectInitializer = "project_initializer"
	NodeSRSParser          = "srs_parser"
	NodeTestGenerator      = "test_generator"
	NodeCodeGenerator      = "code_generator"
	NodeDebugger           = "debugger"
	NodeDocumentation      = "documentation_generator"
)

// DefaultConcurrency bounds concurrent file generation when Config leaves it unset.
const DefaultConcurrency = 4

// Errors returned by New.
var (
	ErrNoProjectDir = errors.New("project directory is required")
	ErrNoLLM        = errors.New("LLM client is required")
	ErrNoTestRunner = errors.New("test runner is required")
)

// Analyzer extracts requirements from document text.
type Analyzer interface {
	Analyze(ctx context.Context, content string) (*srs.Analysis, error)
}

// DatabaseProvisioner starts the project's database and returns its DSN.
type DatabaseProvisioner interface {
	Ensure(ctx context.Context) (string, error)
}

// EnvironmentProvisioner prepares the project's Python environment.
type EnvironmentProvisioner interface {
	Setup(ctx context.Context, projectDir string) error
}

// TestRunner runs the generated tests.
type TestRunner interface {
	RunTests(ctx context.Context, projectDir, testsDir string) (provision.TestResult, error)
}

// ArtifactSink records generated files.
type ArtifactSink interface {
	Save(ctx context.Context, artifact *domain.Artifact) error
}

// Config controls where and how a project is generated.
type Config struct {
	// ProjectDir is the directory the project is written to.
	ProjectDir string
	// Concurrency bounds concurrent LLM generation calls.
	Concurrency int
	// Manifest is written as requirements.txt; nil means manifest.Default().
	Manifest *manifest.Manifest
}

// Deps are the collaborators of the pipeline nodes. Database, Environment
// and Artifacts are optional; a nil value skips that step.
type Deps struct {
	LLM         llm.Client
	Analyzer    Analyzer
	Database    DatabaseProvisioner
	Environment EnvironmentProvisioner
	Tests       TestRunner
	Artifacts   ArtifactSink
	Recorder    tracing.Recorder
	Logger      *slog.Logger

	// DatabaseUnavailable is why Database is nil when provisioning was
	// requested. Each run logs it as a warning.
	DatabaseUnavailable error
}

// Pipeline holds the nodes of one project.
type Pipeline struct {
	project     Project
	concurrency int
	manifest    *manifest.Manifest
	deps        Deps
	logger      *slog.Logger
}

// New creates a Pipeline writing to cfg.ProjectDir.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	if cfg.ProjectDir == "" {
		return nil, ErrNoProjectDir
	}
	if deps.LLM == nil {
		return nil, ErrNoLLM
	}
	if deps.Tests == nil {
		return nil, ErrNoTestRunner
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = srs.NewAnalyzer(deps.LLM, deps.Logger)
	}
	if deps.Recorder == nil {
		deps.Recorder = tracing.Nop{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Manifest == nil {
		cfg.Manifest = manifest.Default()
	}

	return &Pipeline{
		project:     NewProject(cfg.ProjectDir),
		concurrency: cfg.Concurrency,
		manifest:    cfg.Manifest,
		deps:        deps,
		logger:      deps.Logger.With("component", "pipeline"),
	}, nil
}

// Project returns the project the pipeline writes to.
func (p *Pipeline) Project() Project { return p.project }

// Nodes returns the pipeline nodes in their default order.
func (p *Pipeline) Nodes() []workflow.Node {
	return []workflow.Node{
		&ProjectInitializerNode{p: p},
		&SRSParserNode{p: p},
		&TestGeneratorNode{p: p},
		&CodeGeneratorNode{p: p},
		&DebuggerNode{p: p},
		&DocumentationNode{p: p},
	}
}

// Graph builds the default pipeline graph.
func (p *Pipeline) Graph() *workflow.Graph {
	g := workflow.NewGraph()
	nodes := p.Nodes()
	for _, n := range nodes {
		g.AddNode(n)
	}
	for i, n := range nodes {
		next := workflow.End
		if i+1 < len(nodes) {
			next = nodes[i+1].Name()
		}
		g.AddEdge(n.Name(), next)
	}
	return g.SetEntryPoint(nodes[0].Name())
}

// Run executes the default graph over s. Every node is traced as a child
// of a root "pipeline" trace run.
func (p *Pipeline) Run(ctx context.Context, s *workflow.State, opts ...workflow.Option) (*workflow.State, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil state", workflow.ErrInvalidGraph)
	}
	opts = append([]workflow.Option{
		workflow.WithLogger(p.deps.Logger),
		workflow.WithObserver(tracing.NewNodeObserver(p.deps.Recorder)),
	}, opts...)

	runnable, err := p.Graph().Compile(opts...)
	if err != nil {
		return s, fmt.Errorf("failed to compile pipeline: %w", err)
	}

	ctx = tracing.WithRunID(ctx, s.RunID)
	root, ctx := p.deps.Recorder.StartRun(ctx, "pipeline", map[string]any{
		"srs":     s.SRSPath,
		"project": p.project.Name(),
	})

	out, err := runnable.Invoke(ctx, s)
	p.deps.Recorder.EndRun(ctx, root, map[string]any{
		"visited": out.Visited,
		"errors":  len(out.Errors),
	}, err)
	return out, err
}

// write stores a generated file, adds it to the state and records it as an
// artifact.
func (p *Pipeline) write(ctx context.Context, s *workflow.State, rel, content string, kind domain.ArtifactKind) error {
	if err := p.project.Write(rel, content); err != nil {
		return err
	}
	s.AddFile(rel, content)
	p.recordArtifact(ctx, s, rel, content, kind)
	return nil
}

func (p *Pipeline) recordArtifact(ctx context.Context, s *workflow.State, rel, content string, kind domain.ArtifactKind) {
	if p.deps.Artifacts == nil {
		return
	}
	a, err := domain.NewArtifact(s.RunID, rel, kind, []byte(content))
	if err == nil {
		err = p.deps.Artifacts.Save(ctx, a)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "failed to record artifact", "path", rel, "error", err)
	}
}

// toJSON renders prompt inputs. Requirements only hold strings, slices
// and structs, so marshalling cannot fail.
func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
