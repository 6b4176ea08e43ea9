package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrNotOwned indicates a resource belongs to a different client than the
	// one making the request. Mapped to 404 so run IDs are not disclosed.
	ErrNotOwned = errors.New("resource is owned by another client")

	// ErrRunNotFound indicates the requested run does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrClientNameTaken indicates a client with the same name already exists.
	ErrClientNameTaken = errors.New("client name already taken")
)

// ServiceError is a custom error type for service operation failures.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newRunServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "run", Operation: operation, Message: message, Err: err}
}

func newClientServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "client", Operation: operation, Message: message, Err: err}
}
