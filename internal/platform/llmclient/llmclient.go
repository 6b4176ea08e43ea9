// Package llmclient builds the configured language model client.
package llmclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/config"
	"github.com/phrazzld/srsforge/internal/llm"
	"github.com/phrazzld/srsforge/internal/platform/gemini"
	"github.com/phrazzld/srsforge/internal/platform/groq"
)

// Provider names accepted in llm.provider.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// New returns the provider selected by cfg.Provider wrapped in
// llm.Resilient.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (llm.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		provider llm.Client
		err      error
	)
	switch cfg.Provider {
	case ProviderGroq, "":
		provider, err = groq.NewClient(logger, cfg)
	case ProviderGemini:
		provider, err = gemini.NewClient(ctx, logger, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", llm.ErrInvalidConfig, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "language model client initialized",
		"provider", cfg.Provider,
		"model", cfg.ModelName)

	return llm.NewResilient(provider, llm.RetryConfigFrom(cfg), logger), nil
}
