package srs

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	client := mocks.NewMockLLMClientWithResponse("```json\n" + fullAnswer + "\n```")
	a := NewAnalyzer(client, nil)

	out, err := a.Analyze(context.Background(), "The system shall register users.")

	require.NoError(t, err)
	assert.Empty(t, out.MissingKeys)
	assert.Equal(t, []string{"User"}, out.Requirements.Models())

	require.Equal(t, 1, client.Calls())
	assert.Contains(t, client.Prompts()[0], "The system shall register users.")
	opts := client.Options()[0]
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.2, *opts.Temperature, 1e-9)
	assert.Equal(t, 4000, opts.MaxTokens)
}

func TestAnalyzeFallbackOnProse(t *testing.T) {
	a := NewAnalyzer(mocks.NewMockLLMClientWithResponse("nothing useful"), nil)

	out, err := a.Analyze(context.Background(), "content")

	require.NoError(t, err)
	assert.Equal(t, []string{"Failed to parse requirements"}, out.Requirements.FunctionalRequirements)
}

func TestAnalyzeModelError(t *testing.T) {
	a := NewAnalyzer(mocks.NewMockLLMClientWithError(llm.ErrTransientFailure), nil)

	_, err := a.Analyze(context.Background(), "content")

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrTransientFailure))
}
