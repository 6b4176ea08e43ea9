package domain

import "errors"

var (
	// ErrValidation is wrapped by every entity Validate failure.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID marks a malformed or nil UUID.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized marks an operation the caller may not perform.
	ErrUnauthorized = errors.New("unauthorized operation")
)
