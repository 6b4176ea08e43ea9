package mocks

import "errors"

// MockSecretVerifier implements auth.SecretVerifier for testing
type MockSecretVerifier struct {
	// ShouldSucceed determines whether the comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hash, secret string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		Hash   string
		Secret string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.SecretVerifier interface
func (m *MockSecretVerifier) Compare(hash, secret string) error {
	m.CompareCalledWith.Hash = hash
	m.CompareCalledWith.Secret = secret
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hash, secret)
	}
	if m.ShouldSucceed {
		return nil
	}
	return errors.New("secret mismatch")
}
