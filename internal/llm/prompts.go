package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// Generation settings used by the requirement analysis call.
const (
	AnalysisTemperature = 0.2
	AnalysisMaxTokens   = 4000
)

// Prompt names.
const (
	PromptAnalysis      = "analysis"
	PromptModel         = "model"
	PromptRoute         = "route"
	PromptService       = "service"
	PromptAPITest       = "api_test"
	PromptModelTest     = "model_test"
	PromptAuthTest      = "auth_test"
	PromptDebug         = "debug"
	PromptDocumentation = "documentation"
)

const analysisTemplate = `You are a software engineer analyzing a Software Requirements Specification (SRS) document.
Your task is to extract structured information and return it in valid JSON format.

Format your response exactly like this example:
{
    "functional_requirements": [
        "User registration",
        "Password reset functionality"
    ],
    "api_endpoints": [
        {
            "path": "/api/users",
            "method": "POST",
            "description": "Create new user"
        }
    ],
    "db_schema": {
        "tables": [
            {
                "name": "users",
                "fields": ["id", "username", "email"]
            }
        ]
    },
    "auth_requirements": {
        "type": "JWT",
        "features": ["RBAC"]
    }
}

Now analyze this SRS document and return the information in the same JSON structure:
{{.content}}

Remember: The response must be valid JSON, use double quotes for strings, and follow the exact structure shown above.`

const modelTemplate = `Generate a SQLAlchemy model class for FastAPI.

Model: {{.model}}
Requirements: {{.requirements}}

Include:
1. Model class with proper inheritance
2. All required fields with proper types
3. Relationships to other models
4. Database constraints
5. Field validation
6. Pydantic model for API

Follow these rules:
- Use SQLAlchemy declarative base
- Add proper indices
- Include proper foreign keys
- Handle cascading deletes
- Add __repr__ method

Return only the Python module source.`

const routeTemplate = `Generate a FastAPI route handler for the endpoint.

Endpoint: {{.endpoint}}
Requirements: {{.requirements}}

Include:
1. All CRUD operations
2. Input validation
3. Error handling
4. Authentication checks
5. Database operations
6. Response models

Follow these rules:
- Use FastAPI dependency injection
- Include proper status codes
- Add OpenAPI documentation
- Handle database sessions
- Include error responses

Return only the Python module source.`

const serviceTemplate = `Generate a service class for business logic.

Model: {{.model}}
Requirements: {{.requirements}}

Include:
1. Business logic methods
2. Database operations
3. Data validation
4. Error handling
5. Integration points

Follow these rules:
- Use dependency injection
- Handle transactions
- Add proper error types
- Include logging
- Handle edge cases

Return only the Python module source.`

const apiTestTemplate = `Generate pytest test cases for the FastAPI endpoint: {{.endpoint}}

Requirements: {{.requirements}}

Include tests for:
- Valid requests
- Invalid requests
- Authentication/authorization
- Edge cases

Use FastAPI TestClient for all tests. Return only the Python module source.`

const modelTestTemplate = `Generate pytest test cases for the SQLAlchemy model: {{.model}}

Requirements: {{.requirements}}

Include tests for:
- Model instantiation
- Field validation
- Relationships
- CRUD operations

Use pytest fixtures and a test database. Return only the Python module source.`

const authTestTemplate = `Generate pytest test cases for FastAPI authentication and authorization.

Authentication Config: {{.auth_config}}

Include tests for:
1. User registration
2. Login/logout
3. Token handling
4. Protected routes
5. Permission checks

Follow these rules:
- Use FastAPI TestClient
- Test both success and failure cases
- Include token validation
- Test expiry and refresh
- Use secure test credentials

Return only the Python module source.`

const debugTemplate = `Analyze the following test failure and suggest fixes.

Test Output:
{{.test_output}}

Current Code:
{{.file_content}}

Please:
1. Identify the root cause of the failure
2. Suggest specific code changes
3. Consider edge cases and error handling
4. Ensure compliance with FastAPI best practices
5. Maintain existing functionality

Return only the corrected file content.`

const documentationTemplate = `Write a short Markdown overview for the generated FastAPI project "{{.project}}".

Requirements: {{.requirements}}

Describe what the API does and how its resources relate to each other in two or three paragraphs.
Do not include headings or code blocks.`

var templates = map[string]prompts.PromptTemplate{
	PromptAnalysis:      prompts.NewPromptTemplate(analysisTemplate, []string{"content"}),
	PromptModel:         prompts.NewPromptTemplate(modelTemplate, []string{"model", "requirements"}),
	PromptRoute:         prompts.NewPromptTemplate(routeTemplate, []string{"endpoint", "requirements"}),
	PromptService:       prompts.NewPromptTemplate(serviceTemplate, []string{"model", "requirements"}),
	PromptAPITest:       prompts.NewPromptTemplate(apiTestTemplate, []string{"endpoint", "requirements"}),
	PromptModelTest:     prompts.NewPromptTemplate(modelTestTemplate, []string{"model", "requirements"}),
	PromptAuthTest:      prompts.NewPromptTemplate(authTestTemplate, []string{"auth_config"}),
	PromptDebug:         prompts.NewPromptTemplate(debugTemplate, []string{"test_output", "file_content"}),
	PromptDocumentation: prompts.NewPromptTemplate(documentationTemplate, []string{"project", "requirements"}),
}

// RenderPrompt formats the named prompt with values. Every input variable
// of the template must be present in values.
func RenderPrompt(name string, values map[string]any) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	for _, v := range tmpl.InputVariables {
		if _, present := values[v]; !present {
			return "", fmt.Errorf("prompt %q: missing input variable %q", name, v)
		}
	}
	out, err := tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt %q: %w", name, err)
	}
	return out, nil
}
