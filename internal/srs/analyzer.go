package srs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/srsforge/internal/domain"
	"github.com/phrazzld/srsforge/internal/llm"
)

// Analysis is the outcome of analysing a document.
type Analysis struct {
	Requirements *domain.Requirements
	// MissingKeys lists the top-level keys that were filled with defaults.
	MissingKeys []string
}

// Analyzer extracts requirements from document text with a language model.
type Analyzer struct {
	client llm.Client
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer using client.
func NewAnalyzer(client llm.Client, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: client, logger: logger.With(slog.String("component", "srs_analyzer"))}
}

// Analyze asks the model for the requirements of content. Only model call
// failures are returned as errors; undecodable answers yield the fallback
// requirements.
func (a *Analyzer) Analyze(ctx context.Context, content string) (*Analysis, error) {
	prompt, err := llm.RenderPrompt(llm.PromptAnalysis, map[string]any{"content": content})
	if err != nil {
		return nil, err
	}

	raw, err := a.client.Complete(ctx, prompt,
		llm.WithTemperature(llm.AnalysisTemperature),
		llm.WithMaxTokens(llm.AnalysisMaxTokens))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze requirements: %w", err)
	}

	if _, found := ExtractJSON(raw); !found {
		a.logger.WarnContext(ctx, "model answer contains no JSON object", "answer_length", len(raw))
	}

	req, missing := Parse(raw)
	a.logger.DebugContext(ctx, "requirements extracted",
		"endpoints", len(req.APIEndpoints),
		"tables", len(req.DBSchema.Tables),
		"missing_keys", missing)

	return &Analysis{Requirements: req, MissingKeys: missing}, nil
}
