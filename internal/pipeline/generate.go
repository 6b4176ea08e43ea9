package pipeline

import (
	"context"
	"fmt"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/workflow"
	"golang.org/x/sync/errgroup"
)

// job describes one file produced by a single LLM call.
type job struct {
	trace    string
	subject  map[string]any
	prompt   string
	values   map[string]any
	path     string
	kind     domain.ArtifactKind
	testKind string
}

type generated struct {
	job     job
	content string
}

// generateAll runs jobs with bounded concurrency and writes each file as
// soon as its content is available. The state is only updated after every
// job succeeded, in job order.
func (p *Pipeline) generateAll(ctx context.Context, s *workflow.State, jobs []job) error {
	results := make([]generated, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			content, err := p.generate(gctx, j)
			if err != nil {
				return err
			}
			results[i] = generated{job: j, content: content}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		s.AddFile(r.job.path, r.content)
		if r.job.testKind != "" {
			s.AddTestCase(r.job.testKind, r.job.path)
		}
		p.recordArtifact(ctx, s, r.job.path, r.content, r.job.kind)
	}
	return nil
}

func (p *Pipeline) generate(ctx context.Context, j job) (content string, err error) {
	tr, ctx := p.deps.Recorder.StartRun(ctx, j.trace, j.subject)
	defer func() {
		p.deps.Recorder.EndRun(ctx, tr, map[string]any{"file": j.path}, err)
	}()

	prompt, err := llm.RenderPrompt(j.prompt, j.values)
	if err != nil {
		return "", err
	}
	answer, err := p.deps.LLM.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", j.path, err)
	}

	content = StripCodeFence(answer)
	if err := p.project.Write(j.path, content); err != nil {
		return "", err
	}
	return content, nil
}

// uniqueJobs drops jobs whose output path was already claimed by an
// earlier job.
func uniqueJobs(jobs []job) []job {
	seen := make(map[string]bool, len(jobs))
	out := jobs[:0]
	for _, j := range jobs {
		if seen[j.path] {
			continue
		}
		seen[j.path] = true
		out = append(out, j)
	}
	return out
}
