package llm

import "context"

// Client completes a single text prompt.
type Client interface {
	// Complete sends prompt to the model and returns the generated text.
	// Errors wrap one of the package sentinel errors.
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// Options are per-call generation settings. Zero values mean the provider
// default.
type Options struct {
	Temperature *float64
	MaxTokens   int
}

// Option customises a single call.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithMaxTokens caps the number of generated tokens.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// ApplyOptions folds opts over defaults.
func ApplyOptions(defaults Options, opts ...Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
