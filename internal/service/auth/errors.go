package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidCredentials is returned for an unknown client or a wrong secret.
	// The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid client credentials")

	// ErrWeakSigningKey is returned when the JWT secret is shorter than 32 bytes.
	ErrWeakSigningKey = errors.New("jwt secret must be at least 32 characters")
)
