package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/srsforge/internal/llm"
)

// MockLLMClient implements llm.Client for testing
type MockLLMClient struct {
	// CompleteFn allows test cases to mock the Complete behavior
	CompleteFn func(ctx context.Context, prompt string, opts ...llm.Option) (string, error)

	// Default response values
	Response string
	Err      error

	mu      sync.Mutex
	prompts []string
	options []llm.Options
}

var _ llm.Client = (*MockLLMClient)(nil)

// NewMockLLMClientWithResponse creates a MockLLMClient that always returns response
func NewMockLLMClientWithResponse(response string) *MockLLMClient {
	return &MockLLMClient{Response: response}
}

// NewMockLLMClientWithError creates a MockLLMClient that always fails with err
func NewMockLLMClientWithError(err error) *MockLLMClient {
	return &MockLLMClient{Err: err}
}

// Complete implements llm.Client
func (m *MockLLMClient) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, llm.ApplyOptions(llm.Options{}, opts...))
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, prompt, opts...)
	}
	return m.Response, m.Err
}

// Calls returns the number of Complete calls
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received
func (m *MockLLMClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Options returns the resolved options of every call
func (m *MockLLMClient) Options() []llm.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Options(nil), m.options...)
}
