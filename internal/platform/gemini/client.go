package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/llm"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Client.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Client using the Gemini API.
type Client struct {
	models   contentGenerator
	model    string
	defaults llm.Options
	logger   *slog.Logger
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a Gemini client from the LLM configuration.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", llm.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", llm.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", llm.ErrInvalidConfig, err)
	}

	temp := cfg.Temperature
	return newClient(client.Models, cfg.ModelName, llm.Options{Temperature: &temp, MaxTokens: cfg.MaxTokens}, logger), nil
}

func newClient(models contentGenerator, model string, defaults llm.Options, logger *slog.Logger) *Client {
	return &Client{
		models:   models,
		model:    model,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "gemini")),
	}
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", llm.ErrEmptyPrompt
	}
	o := llm.ApplyOptions(c.defaults, opts...)

	genCfg := &genai.GenerateContentConfig{}
	if o.Temperature != nil {
		t := float32(*o.Temperature)
		genCfg.Temperature = &t
	}
	if o.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(o.MaxTokens)
	}

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}

	c.logger.DebugContext(ctx, "making Gemini API call", "model", c.model, "prompt_length", len(prompt))

	resp, err := c.models.GenerateContent(ctx, c.model, contents, genCfg)
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", fmt.Errorf("%w: nil response", llm.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s", llm.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no content generated", llm.ErrInvalidResponse)
	case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
		return "", fmt.Errorf("%w: content blocked by safety filters", llm.ErrContentBlocked)
	case resp.Candidates[0].Content == nil:
		return "", fmt.Errorf("%w: empty content in response", llm.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty text in response", llm.ErrInvalidResponse)
	}
	return b.String(), nil
}

// classify maps SDK errors onto llm errors. Unknown errors are treated as
// transient.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", llm.ErrInvalidConfig, err)
		case apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
		case apiErr.Code >= http.StatusBadRequest:
			return fmt.Errorf("%w: %v", llm.ErrGenerationFailed, err)
		}
	}
	return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
}
