// Package auth issues and validates the JWT access tokens API clients use,
// and verifies client secrets stored as bcrypt hashes.
package auth
