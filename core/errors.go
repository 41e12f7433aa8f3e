/*
errors.go - Centralized error kinds for the engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure the engine reports is one of four kinds, each a struct that
  unwraps to a sentinel so callers can branch with errors.Is / errors.As.

ERROR KINDS:
  1. ValidationError    - malformed or missing input, rejected before computing
  2. NotFoundError      - referenced debtor, item or case is absent
  3. ExternalStoreError - a data store call failed
  4. ConflictError      - duplicate detected (informational in batches)

BATCH SEMANTICS:
  Single-item operations return these errors. Batch operations capture them
  per item in their result and keep going; nothing is silently dropped.

SEE ALSO:
  - store.go: Stores return NotFoundError / ConflictError / ExternalStoreError
  - api/handlers.go: Maps kinds to HTTP status codes
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the root of every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrExternalStore is the root of every ExternalStoreError.
	ErrExternalStore = errors.New("external store failure")

	// ErrConflict is the root of every ConflictError.
	ErrConflict = errors.New("conflict")

	// ErrInvalidPeriod is used when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes a rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "debtor", "receivable", "payable", "case"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ExternalStoreError wraps a failed store call.
type ExternalStoreError struct {
	Op  string
	Err error
}

func (e *ExternalStoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the driver error.
func (e *ExternalStoreError) Unwrap() []error { return []error{ErrExternalStore, e.Err} }

// ConflictError reports a duplicate.
type ConflictError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s conflict: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %q conflict: %s", e.Kind, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// StoreError wraps err as an ExternalStoreError unless it already is one of
// the engine's error kinds.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) || IsClientError(err) || errors.Is(err, ErrExternalStore) {
		return err
	}
	return &ExternalStoreError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsStoreFailure returns true if the error came from the data store.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrExternalStore)
}
