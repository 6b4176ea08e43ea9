package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/workflow"
)

var errUnfixable = errors.New("Unable to fix all test failures") //nolint:staticcheck // surfaced verbatim in run logs

// DebuggerNode runs the generated tests and asks the model to fix failing
// test files once.
type DebuggerNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *DebuggerNode) Name() string { return NodeDebugger }

// Run implements workflow.Node.
func (n *DebuggerNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	if err := n.run(ctx, s); err != nil {
		return fail(s, "Debugging error", "Error during debugging", err)
	}
	return NodeDocumentation, nil
}

func (n *DebuggerNode) run(ctx context.Context, s *workflow.State) error {
	p := n.p
	root := p.project.Root()
	testsDir := filepath.Join(root, TestsDir)

	res, err := p.deps.Tests.RunTests(ctx, root, testsDir)
	if err != nil {
		return err
	}
	if res.Passed {
		s.Logf("All tests passed successfully")
		return nil
	}

	s.Logf("Found test failures, attempting fixes")
	if err := n.fix(ctx, s, res.Output, testsDir); err != nil {
		return err
	}

	res, err = p.deps.Tests.RunTests(ctx, root, testsDir)
	if err != nil {
		return err
	}
	if !res.Passed {
		return errUnfixable
	}
	s.Logf("Successfully fixed all test failures")
	return nil
}

func (n *DebuggerNode) fix(ctx context.Context, s *workflow.State, output, testsDir string) (err error) {
	p := n.p
	files := FailingTestFiles(output, testsDir)

	tr, ctx := p.deps.Recorder.StartRun(ctx, "debug_test_failures", map[string]any{"files": len(files)})
	defer func() {
		p.deps.Recorder.EndRun(ctx, tr, map[string]any{"status": "fixes_applied"}, err)
	}()

	for _, abs := range files {
		rel, err := p.project.Rel(abs)
		if err != nil {
			p.logger.WarnContext(ctx, "ignoring failing test outside the project", "path", abs)
			continue
		}
		current, err := p.project.Read(rel)
		if err != nil {
			return err
		}

		prompt, err := llm.RenderPrompt(llm.PromptDebug, map[string]any{
			"test_output":  output,
			"file_content": current,
		})
		if err != nil {
			return err
		}
		answer, err := p.deps.LLM.Complete(ctx, prompt)
		if err != nil {
			return err
		}

		if err := p.write(ctx, s, rel, StripCodeFence(answer), domain.ArtifactTest); err != nil {
			return err
		}
		ftr, _ := p.deps.Recorder.StartRun(ctx, "fix_applied", map[string]any{"file": rel})
		p.deps.Recorder.EndRun(ctx, ftr, nil, nil)
	}
	return nil
}

// FailingTestFiles extracts the failing test files from verbose pytest
// output. Lines containing both "::" and "FAILED" name a failing test; the
// part before the first "::" is its file. Paths starting with tests/ are
// resolved under testsDir, other paths are joined onto it. Each file is
// listed once, in order of first failure.
func FailingTestFiles(output, testsDir string) []string {
	var files []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, "::") || !strings.Contains(line, "FAILED") {
			continue
		}
		file := strings.SplitN(line, "::", 2)[0]
		// Short test summary lines read "FAILED tests/x.py::test_y - reason".
		file = strings.TrimSpace(strings.TrimPrefix(file, "FAILED "))
		if file == "" {
			continue
		}

		var full string
		if rest, ok := cutTestsPrefix(file); ok {
			full = filepath.Join(testsDir, filepath.FromSlash(rest))
		} else {
			full = filepath.Join(testsDir, filepath.FromSlash(file))
		}
		if !seen[full] {
			seen[full] = true
			files = append(files, full)
		}
	}
	return files
}

func cutTestsPrefix(file string) (string, bool) {
	for _, prefix := range []string{"tests/", `tests\`} {
		if rest, ok := strings.CutPrefix(file, prefix); ok {
			return strings.ReplaceAll(rest, `\`, "/"), true
		}
	}
	return "", false
}
