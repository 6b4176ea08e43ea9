// Package groq implements llm.Client for Groq's OpenAI-compatible chat
// completions API through langchaingo's openai model.
package groq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// DefaultModel is used when no model name is configured.
const DefaultModel = "mistral-saba-24b"

// stopContentFilter is the finish reason reported for filtered output.
const stopContentFilter = "content_filter"

var statusPattern = regexp.MustCompile(`status code:? (\d{3})`)

// Client implements llm.Client using Groq.
type Client struct {
	model    llms.Model
	defaults llm.Options
	logger   *slog.Logger
}

var _ llm.Client = (*Client)(nil)

// NewClient creates a Groq client from the LLM configuration.
func NewClient(logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("%w: groq API key cannot be empty", llm.ErrInvalidConfig)
	}

	baseURL := cfg.GroqBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	modelName := cfg.ModelName
	if modelName == "" {
		modelName = DefaultModel
	}

	model, err := openai.New(
		openai.WithToken(cfg.GroqAPIKey),
		openai.WithModel(modelName),
		openai.WithBaseURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Groq client: %v", llm.ErrInvalidConfig, err)
	}

	temp := cfg.Temperature
	return newClient(model, llm.Options{Temperature: &temp, MaxTokens: cfg.MaxTokens}, logger), nil
}

func newClient(model llms.Model, defaults llm.Options, logger *slog.Logger) *Client {
	return &Client{
		model:    model,
		defaults: defaults,
		logger:   logger.With(slog.String("component", "groq")),
	}
}

// Complete implements llm.Client.
func (c *Client) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", llm.ErrEmptyPrompt
	}
	o := llm.ApplyOptions(c.defaults, opts...)

	var callOpts []llms.CallOption
	if o.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*o.Temperature))
	}
	if o.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(o.MaxTokens))
	}

	c.logger.DebugContext(ctx, "making Groq API call", "prompt_length", len(prompt))

	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		callOpts...)
	if err != nil {
		return "", classify(err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%w: no choices in response", llm.ErrInvalidResponse)
	}
	choice := resp.Choices[0]
	if choice.StopReason == stopContentFilter {
		return "", fmt.Errorf("%w: completion stopped by content filter", llm.ErrContentBlocked)
	}
	if strings.TrimSpace(choice.Content) == "" {
		return "", fmt.Errorf("%w: empty completion", llm.ErrInvalidResponse)
	}
	return choice.Content, nil
}

// classify maps client errors onto llm errors using the HTTP status code
// embedded in the error message. Errors without a status are transient.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
	}

	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		switch {
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("%w: %v", llm.ErrInvalidConfig, err)
		case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
		case code >= http.StatusBadRequest:
			return fmt.Errorf("%w: %v", llm.ErrGenerationFailed, err)
		}
	}
	return fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
}
