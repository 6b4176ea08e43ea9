package groq

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	resp     *llms.ContentResponse
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(
	_ context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func choice(content, stop string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content, StopReason: stop}}}
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(slog.Default(), config.LLMConfig{ModelName: DefaultModel})
	assert.ErrorIs(t, err, llm.ErrInvalidConfig)

	_, err = NewClient(nil, config.LLMConfig{GroqAPIKey: "gsk_x"})
	assert.Error(t, err)
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(slog.Default(), config.LLMConfig{GroqAPIKey: "gsk_x", Temperature: 0.1})
	require.NoError(t, err)
	require.NotNil(t, c.defaults.Temperature)
	assert.InDelta(t, 0.1, *c.defaults.Temperature, 1e-9)
}

func TestComplete(t *testing.T) {
	fake := &fakeModel{resp: choice("def test(): pass", "stop")}
	temp := 0.1
	c := newClient(fake, llm.Options{Temperature: &temp}, slog.Default())

	out, err := c.Complete(context.Background(), "write a test", llm.WithMaxTokens(4000))

	require.NoError(t, err)
	assert.Equal(t, "def test(): pass", out)
	require.Len(t, fake.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.messages[0].Role)
	assert.InDelta(t, 0.1, fake.opts.Temperature, 1e-9)
	assert.Equal(t, 4000, fake.opts.MaxTokens)
}

func TestCompleteResponseErrors(t *testing.T) {
	testCases := []struct {
		name string
		resp *llms.ContentResponse
		want error
	}{
		{"nil response", nil, llm.ErrInvalidResponse},
		{"no choices", &llms.ContentResponse{}, llm.ErrInvalidResponse},
		{"empty content", choice("  ", "stop"), llm.ErrInvalidResponse},
		{"content filter", choice("partial", "content_filter"), llm.ErrContentBlocked},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(&fakeModel{resp: tc.resp}, llm.Options{}, slog.Default())
			_, err := c.Complete(context.Background(), "prompt")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"rate limited", errors.New("API returned unexpected status code: 429: rate limit reached"), llm.ErrTransientFailure},
		{"server error", errors.New("API returned unexpected status code: 502"), llm.ErrTransientFailure},
		{"unauthorized", errors.New("API returned unexpected status code: 401: invalid api key"), llm.ErrInvalidConfig},
		{"bad request", errors.New("API returned unexpected status code: 400: model not found"), llm.ErrGenerationFailed},
		{"network", errors.New("dial tcp: i/o timeout"), llm.ErrTransientFailure},
		{"cancelled", context.Canceled, llm.ErrTransientFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, classify(tc.err), tc.want)
		})
	}
}
