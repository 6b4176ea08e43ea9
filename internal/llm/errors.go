package llm

import "errors"

// Common errors returned by language model clients
var (
	// ErrGenerationFailed is returned when a completion fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate completion")

	// ErrInvalidResponse is returned when the model response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during completion")

	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid language model configuration")

	// ErrEmptyPrompt is returned when an empty prompt is submitted
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrEmptyPrompt) ||
		errors.Is(err, ErrGenerationFailed)
}
