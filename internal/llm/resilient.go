package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/phrazzld/srsforge/internal/config"
	"golang.org/x/time/rate"
)

// RetryConfig controls the Resilient wrapper.
type RetryConfig struct {
	MaxRetries        int
	BaseDelay         time.Duration
	RequestsPerSecond float64
}

// RetryConfigFrom derives a RetryConfig from the application LLM settings.
func RetryConfigFrom(cfg config.LLMConfig) RetryConfig {
	return RetryConfig{
		MaxRetries:        cfg.MaxRetries,
		BaseDelay:         time.Duration(cfg.RetryDelaySeconds) * time.Second,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

// Resilient wraps a Client with request pacing and exponential backoff.
// Permanent errors (see IsPermanent) are returned immediately.
type Resilient struct {
	next    Client
	limiter *rate.Limiter
	cfg     RetryConfig
	logger  *slog.Logger
}

var _ Client = (*Resilient)(nil)

// NewResilient wraps next. A RequestsPerSecond of zero disables pacing.
func NewResilient(next Client, cfg RetryConfig, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries < 0 {
		logger.Warn("invalid max retries value, using default", "max_retries", 3)
		cfg.MaxRetries = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 2 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Resilient{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "llm")),
	}
}

// Complete implements Client.
func (r *Resilient) Complete(ctx context.Context, prompt string, opts ...Option) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	var (
		text    string
		attempt int
	)
	operation := func() error {
		attempt++
		if err := r.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrTransientFailure, err))
		}

		r.logger.DebugContext(ctx, "making language model call",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxRetries+1,
			"prompt_length", len(prompt))

		out, err := r.next.Complete(ctx, prompt, opts...)
		if err != nil {
			if IsPermanent(err) {
				r.logger.WarnContext(ctx, "permanent error occurred, not retrying", "error", err)
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.BaseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0.5
	policy.MaxElapsedTime = 0

	notify := func(err error, delay time.Duration) {
		r.logger.InfoContext(ctx, "retrying language model call after delay",
			"attempt", attempt,
			"delay", delay.String(),
			"error", err)
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.cfg.MaxRetries)), ctx),
		notify)
	if err == nil {
		return text, nil
	}
	if IsPermanent(err) {
		return "", err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %v", ErrTransientFailure, ctxErr)
	}
	r.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", r.cfg.MaxRetries)
	if errors.Is(err, ErrTransientFailure) {
		return "", fmt.Errorf("exceeded maximum retry attempts (%d): %w", r.cfg.MaxRetries, err)
	}
	return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		ErrTransientFailure, r.cfg.MaxRetries, err)
}
