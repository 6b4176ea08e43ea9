package pipeline

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/workflow"
)

// DocumentationNode writes an mkdocs site describing the project.
type DocumentationNode struct{ p *Pipeline }

// Name implements workflow.Node.
func (n *DocumentationNode) Name() string { return NodeDocumentation }

// Run implements workflow.Node.
func (n *DocumentationNode) Run(ctx context.Context, s *workflow.State) (string, error) {
	if err := n.run(ctx, s); err != nil {
		return fail(s, "Documentation generation error", "Error generating documentation", err)
	}
	s.Logf("Successfully generated documentation")
	return workflow.End, nil
}

func (n *DocumentationNode) run(ctx context.Context, s *workflow.State) error {
	p := n.p
	req := s.Requirements
	if req == nil {
		return errNoRequirements
	}
	name := p.project.Name()

	files := []struct {
		path    string
		content string
	}{
		{"mkdocs.yml", MkdocsConfig(name)},
		{path.Join(DocsDir, "index.md"), IndexPage(name, n.overview(ctx, name, req), req)},
		{path.Join(DocsDir, "api.md"), APIPage(req)},
	}
	for _, f := range files {
		if err := p.write(ctx, s, f.path, f.content, domain.ArtifactDoc); err != nil {
			return err
		}
	}
	return nil
}

// overview asks the model for an introduction. The documentation is
// complete without it, so failures are only logged.
func (n *DocumentationNode) overview(ctx context.Context, name string, req *domain.Requirements) string {
	p := n.p
	prompt, err := llm.RenderPrompt(llm.PromptDocumentation, map[string]any{
		"project":      name,
		"requirements": toJSON(req),
	})
	if err == nil {
		var answer string
		answer, err = p.deps.LLM.Complete(ctx, prompt)
		if err == nil {
			return strings.TrimSpace(StripCodeFence(answer))
		}
	}
	p.logger.WarnContext(ctx, "skipping generated project overview", "error", err)
	return ""
}

// MkdocsConfig renders mkdocs.yml for the Material theme.
func MkdocsConfig(name string) string {
	return fmt.Sprintf(`site_name: %s
theme:
  name: material
nav:
  - Home: index.md
  - API: api.md
`, name)
}

// IndexPage renders the documentation home page.
func IndexPage(name, overview string, req *domain.Requirements) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	if overview != "" {
		b.WriteString(overview)
		b.WriteString("\n\n")
	}

	b.WriteString("## Functional Requirements\n\n")
	if len(req.FunctionalRequirements) == 0 {
		b.WriteString("No functional requirements were identified.\n")
	}
	for _, fr := range req.FunctionalRequirements {
		fmt.Fprintf(&b, "- %s\n", fr)
	}

	if models := req.Models(); len(models) > 0 {
		b.WriteString("\n## Models\n\n")
		for _, t := range req.DBSchema.Tables {
			fmt.Fprintf(&b, "- **%s** (`%s`): %s\n", domain.ModelName(t.Name), t.Name, strings.Join(t.Fields, ", "))
		}
	}

	if req.HasAuth() {
		b.WriteString("\n## Authentication\n\n")
		fmt.Fprintf(&b, "Type: %s\n", req.AuthRequirements.Type)
		for _, f := range req.AuthRequirements.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}

// APIPage renders the endpoint reference table.
func APIPage(req *domain.Requirements) string {
	var b strings.Builder
	b.WriteString("# API Reference\n\n")
	if len(req.APIEndpoints) == 0 {
		b.WriteString("No endpoints were identified.\n")
		return b.String()
	}

	b.WriteString("| Method | Path | Description |\n")
	b.WriteString("|--------|------|-------------|\n")
	for _, ep := range req.APIEndpoints {
		fmt.Fprintf(&b, "| %s | `%s` | %s |\n",
			strings.ToUpper(ep.Method), ep.Path, escapeCell(ep.Description))
	}
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
