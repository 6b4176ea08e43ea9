package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the root of every lookup miss.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is the root of every unique-constraint clash.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity marks an entity rejected before or during a write,
	// for example a run referencing a client that does not exist.
	ErrInvalidEntity = errors.New("invalid entity")

	ErrRunNotFound      = fmt.Errorf("%w: run", ErrNotFound)
	ErrClientNotFound   = fmt.Errorf("%w: client", ErrNotFound)
	ErrTaskNotFound     = fmt.Errorf("%w: task", ErrNotFound)
	ErrTraceRunNotFound = fmt.Errorf("%w: trace run", ErrNotFound)

	ErrClientNameExists = fmt.Errorf("%w: client name", ErrDuplicate)
)

// IsNotFoundError reports whether err wraps ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err wraps ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
