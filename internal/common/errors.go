// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Common application errors.
var (
	// ErrNotFound marks lookups and mutations that matched no row.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks rejected input: missing required fields or
	// dangling references.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks operations refused because of existing state:
	// exhausted slug search, non-empty or default-tenant deletion.
	ErrConflict = errors.New("conflict")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ValidationError rejects caller input with a machine-readable code.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error with the given code.
func NewValidationError(code, message string) error {
	return &ValidationError{Code: code, Message: message}
}

// NotFoundError reports an unknown entity id with a machine-readable code.
type NotFoundError struct {
	Code    string
	Message string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError creates a not-found error with the given code.
func NewNotFoundError(code, message string) error {
	return &NotFoundError{Code: code, Message: message}
}

// ConflictError reports an operation refused because of existing state. For
// non-empty household deletions, Usage carries the per-table row counts.
type ConflictError struct {
	Usage   *model.HouseholdUsage
	Code    string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Usage != nil {
		return fmt.Sprintf("%s: %s (users=%d sections=%d categories=%d entries=%d)",
			e.Code, e.Message, e.Usage.Users, e.Usage.Sections, e.Usage.Categories, e.Usage.Entries)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NewConflictError creates a conflict error with the given code.
func NewConflictError(code, message string) error {
	return &ConflictError{Code: code, Message: message}
}

// ErrorCode extracts the machine-readable code from a classified error, or
// returns the empty string for unclassified errors.
func ErrorCode(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf.Code
	}
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
