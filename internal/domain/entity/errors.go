package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationFailed indicates that validation checks have failed
	ErrValidationFailed = errors.New("validation failed")

	// ErrDuplicateLead indicates that a lead with the same normalized URL
	// already exists for the owning user
	ErrDuplicateLead = errors.New("duplicate lead")
)

// ValidationError represents a validation error with detailed field information.
// It implements the error interface and provides context about which field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns a formatted error message for the validation error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// FatalConfigError indicates that a scrape job cannot start at all: the
// configuration or the owning user is unusable. It is the only error kind
// (besides cancellation) that aborts a job before dispatch.
type FatalConfigError struct {
	Reason string
}

// Error returns the reason the job was rejected.
func (e *FatalConfigError) Error() string {
	return fmt.Sprintf("fatal config: %s", e.Reason)
}

// IsFatalConfig reports whether err is a FatalConfigError.
func IsFatalConfig(err error) bool {
	var fce *FatalConfigError
	return errors.As(err, &fce)
}
