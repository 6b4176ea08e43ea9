package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/phrazzld/srsforge/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIPage(t *testing.T) {
	req := &domain.Requirements{APIEndpoints: []domain.Endpoint{
		{Path: "/api/users", Method: "post", Description: "Create | register user"},
		{Path: "/api/users/{id}", Method: "GET", Description: "Fetch\nuser"},
	}}

	want := "# API Reference\n\n" +
		"| Method | Path | Description |\n" +
		"|--------|------|-------------|\n" +
		"| POST | `/api/users` | Create \\| register user |\n" +
		"| GET | `/api/users/{id}` | Fetch user |\n"
	assert.Equal(t, want, APIPage(req))

	assert.Equal(t, "# API Reference\n\nNo endpoints were identified.\n", APIPage(&domain.Requirements{}))
}

func TestIndexPage(t *testing.T) {
	req := &domain.Requirements{
		FunctionalRequirements: []string{"User registration", "Password reset"},
		DBSchema:               domain.Schema{Tables: []domain.Table{{Name: "users", Fields: []string{"id", "email"}}}},
		AuthRequirements:       domain.Auth{Type: "JWT", Features: []string{"RBAC"}},
	}

	page := IndexPage("generated_api", "An API for users.", req)

	assert.Contains(t, page, "# generated_api\n\nAn API for users.\n\n## Functional Requirements\n\n- User registration\n- Password reset\n")
	assert.Contains(t, page, "- **User** (`users`): id, email\n")
	assert.Contains(t, page, "## Authentication\n\nType: JWT\n- RBAC\n")
}

func TestMkdocsConfig(t *testing.T) {
	cfg := MkdocsConfig("inventory")
	assert.Contains(t, cfg, "site_name: inventory\n")
	assert.Contains(t, cfg, "name: material")
}

func TestDocumentationOverviewFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, mocks.NewMockLLMClientWithError(errors.New("rate limited")), &fakeTests{})
	s := workflow.NewState(uuid.New(), "", "x")
	s.Requirements = &domain.Requirements{FunctionalRequirements: []string{"Search"}}

	next, err := (&DocumentationNode{p: f.pipeline}).Run(context.Background(), s)

	require.NoError(t, err)
	assert.Equal(t, workflow.End, next)
	assert.Equal(t, []string{"Successfully generated documentation"}, s.Logs)
	assert.Contains(t, s.GeneratedCode["docs/index.md"], "- Search\n")
	assert.Contains(t, f.logs.String(), "skipping generated project overview")
}
