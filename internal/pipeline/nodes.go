package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/manifest"
	"github.com/phrazzld/srsforge/internal/srs"
	"github.com/phrazzld/srsforge/internal/workflow"
)

var errNoRequirements = errors.New("no requirements available")

// fail records a node failure in the run errors and logs.
func fail(s *workflow.State, errPrefix, logPrefix string, err error) (string, error) {
	s.Errorf("%s: %v", errPrefix, err)
	s.Logf("%s: %v", logPrefix, err)
	return workflow.ErrorHandler, nil
}

const mainPy = `from fastapi import FastAPI

app = FastAPI()


@app.get("/")
async def root():
    return {"message": "Hello World"}
`

// ProjectInitializerNode creates the project skeleton and provisions its
// database and Python environment.
type ProjectInitializerNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *ProjectInitializerNode) Name() string { return NodeProjectInitializer }

// Run implements workflow.Node.
func (n *ProjectInitializerNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	if err := n.run(ctx, s); err != nil {
		return fail(s, "Project initialization error", "Error initializing project", err)
	}
	s.Logf("Successfully initialized project structure")
	return NodeSRSParser, nil
}

func (n *ProjectInitializerNode) run(ctx context.Context, s *workflow.State) error {
	p := n.p
	if err := p.project.MkdirAll(RoutesDir, ModelsDir, ServicesDir); err != nil {
		return err
	}
	if err := p.write(ctx, s, MainFile, mainPy, domain.ArtifactScaffold); err != nil {
		return err
	}
	if err := p.write(ctx, s, RequirementsTxt, string(manifest.Render(p.manifest)), domain.ArtifactScaffold); err != nil {
		return err
	}

	if p.deps.Database != nil {
		dsn, err := p.deps.Database.Ensure(ctx)
		if err != nil {
			return fmt.Errorf("failed to provision database: %w", err)
		}
		if err := p.write(ctx, s, EnvFile, "DATABASE_URL="+dsn+"\n", domain.ArtifactScaffold); err != nil {
			return err
		}
	} else if p.deps.DatabaseUnavailable != nil {
		s.Logf("Warning: database provisioning skipped: %v", p.deps.DatabaseUnavailable)
	} else {
		p.logger.DebugContext(ctx, "database provisioning disabled")
	}

	if p.deps.Environment != nil {
		if err := p.deps.Environment.Setup(ctx, p.project.Root()); err != nil {
			return err
		}
	} else {
		p.logger.DebugContext(ctx, "virtual environment provisioning disabled")
	}
	return nil
}

// SRSParserNode extracts requirements from the SRS document.
type SRSParserNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *SRSParserNode) Name() string { return NodeSRSParser }

// Run implements workflow.Node.
func (n *SRSParserNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	analysis, err := n.run(ctx, s)
	if err != nil {
		return fail(s, "SRS parsing error", "Error in SRS parsing", err)
	}
	s.Requirements = analysis.Requirements
	if len(analysis.MissingKeys) > 0 {
		s.Logf("Warning: Added missing keys in requirements: %s", strings.Join(analysis.MissingKeys, ", "))
	}
	s.Logf("Successfully parsed SRS document")
	return NodeTestGenerator, nil
}

func (n *SRSParserNode) run(ctx context.Context, s *workflow.State) (*srs.Analysis, error) {
	content := s.SRSContent
	if s.SRSFile != "" {
		loaded, err := srs.Load(s.SRSFile)
		if err != nil {
			return nil, err
		}
		content = loaded
	}
	if strings.TrimSpace(content) == "" {
		return nil, srs.ErrEmptyDocument
	}
	return n.p.deps.Analyzer.Analyze(ctx, content)
}

// TestGeneratorNode writes pytest suites for the endpoints, models and
// authentication requirements.
type TestGeneratorNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *TestGeneratorNode) Name() string { return NodeTestGenerator }

// Run implements workflow.Node.
func (n *TestGeneratorNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	if err := n.run(ctx, s); err != nil {
		return fail(s, "Test generation error", "Error generating tests", err)
	}
	s.Logf("Successfully generated test cases")
	return NodeCodeGenerator, nil
}

func (n *TestGeneratorNode) run(ctx context.Context, s *workflow.State) error {
	req := s.Requirements
	if req == nil {
		return errNoRequirements
	}
	if err := n.p.project.MkdirAll(RouteTestsDir, ModelTestsDir); err != nil {
		return err
	}
	return n.p.generateAll(ctx, s, testJobs(req))
}

// testJobs lists the test files generated for req.
func testJobs(req *domain.Requirements) []job {
	reqJSON := toJSON(req)
	var jobs []job

	for _, ep := range req.Endpoints() {
		jobs = append(jobs, job{
			trace:    "generate_api_test",
			subject:  map[string]any{"endpoint": ep},
			prompt:   llm.PromptAPITest,
			values:   map[string]any{"endpoint": ep, "requirements": reqJSON},
			path:     path.Join(RouteTestsDir, "test_"+domain.ResourceName(ep)+".py"),
			kind:     domain.ArtifactTest,
			testKind: workflow.TestKindRoutes,
		})
	}
	for _, model := range req.Models() {
		jobs = append(jobs, job{
			trace:    "generate_model_test",
			subject:  map[string]any{"model": model},
			prompt:   llm.PromptModelTest,
			values:   map[string]any{"model": model, "requirements": reqJSON},
			path:     path.Join(ModelTestsDir, "test_"+strings.ToLower(model)+".py"),
			kind:     domain.ArtifactTest,
			testKind: workflow.TestKindModels,
		})
	}
	if req.HasAuth() {
		jobs = append(jobs, job{
			trace:    "generate_auth_test",
			subject:  map[string]any{"auth_type": req.AuthRequirements.Type},
			prompt:   llm.PromptAuthTest,
			values:   map[string]any{"auth_config": toJSON(req.AuthRequirements)},
			path:     path.Join(TestsDir, "test_auth.py"),
			kind:     domain.ArtifactTest,
			testKind: workflow.TestKindAuth,
		})
	}
	return uniqueJobs(jobs)
}

// CodeGeneratorNode writes models, routes and services.
type CodeGeneratorNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *CodeGeneratorNode) Name() string { return NodeCodeGenerator }

// Run implements workflow.Node.
func (n *CodeGeneratorNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	if err := n.run(ctx, s); err != nil {
		return fail(s, "Code generation error", "Error generating code", err)
	}
	s.Logf("Successfully generated application code")
	return NodeDebugger, nil
}

func (n *CodeGeneratorNode) run(ctx context.Context, s *workflow.State) error {
	req := s.Requirements
	if req == nil {
		return errNoRequirements
	}
	if err := n.p.project.MkdirAll(RoutesDir, ModelsDir, ServicesDir); err != nil {
		return err
	}
	return n.p.generateAll(ctx, s, codeJobs(req))
}

// codeJobs lists the application files generated for req.
func codeJobs(req *domain.Requirements) []job {
	reqJSON := toJSON(req)
	models := req.Models()
	var jobs []job

	for _, model := range models {
		jobs = append(jobs, job{
			trace:   "generate_model_code",
			subject: map[string]any{"model": model},
			prompt:  llm.PromptModel,
			values:  map[string]any{"model": model, "requirements": reqJSON},
			path:    path.Join(ModelsDir, strings.ToLower(model)+".py"),
			kind:    domain.ArtifactModel,
		})
	}
	for _, ep := range req.Endpoints() {
		jobs = append(jobs, job{
			trace:   "generate_route_code",
			subject: map[string]any{"endpoint": ep},
			prompt:  llm.PromptRoute,
			values:  map[string]any{"endpoint": ep, "requirements": reqJSON},
			path:    path.Join(RoutesDir, domain.ResourceName(ep)+".py"),
			kind:    domain.ArtifactRoute,
		})
	}
	for _, model := range models {
		jobs = append(jobs, job{
			trace:   "generate_service_code",
			subject: map[string]any{"model": model},
			prompt:  llm.PromptService,
			values:  map[string]any{"model": model, "requirements": reqJSON},
			path:    path.Join(ServicesDir, strings.ToLower(model)+"_service.py"),
			kind:    domain.ArtifactService,
		})
	}
	return uniqueJobs(jobs)
}
