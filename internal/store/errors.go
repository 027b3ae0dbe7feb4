package store

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the store has no backend handle; every
// operation short-circuits before issuing a request.
var ErrNotConfigured = errors.New("store backend not configured")

// ErrNotFound marks an expected row missing, e.g. a delete target.
var ErrNotFound = errors.New("record not found")

// StoreError wraps a rejection from the backend with the operation that
// triggered it. The backend message is passed through untouched.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError rejects malformed input (empty name, bad day key) before
// any round trip to the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
