package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when a mutation is attempted without a
	// resolved actor identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSelfReference is returned by follow operations targeting the actor
	// itself, before any read or write is performed.
	ErrSelfReference = errors.New("cannot follow yourself")

	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrBackendUnavailable wraps storage connectivity and timeout failures.
	// Read paths degrade to empty results on it; write paths propagate it.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// ValidationError rejects malformed input, e.g. empty post content.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// DuplicateIdentityError reports a registration collision and names the
// colliding field ("email" or "username").
type DuplicateIdentityError struct {
	Field string
}

func (e *DuplicateIdentityError) Error() string {
	return fmt.Sprintf("%s already registered", e.Field)
}
