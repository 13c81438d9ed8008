// Package errors consolidates error definitions for the tracker.
//
// This package provides:
// - Sentinel errors for all error conditions
// - Error category checking functions
// - Error wrapping utilities
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors for common conditions
// ============================================================================

var (
	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")

	// Storage errors
	ErrStorage       = errors.New("storage error")
	ErrStorageClosed = errors.New("storage is closed")

	// Sampler errors
	ErrUnsupported = errors.New("not supported on this platform")
	ErrUnavailable = errors.New("subsystem unavailable")

	// Query errors
	ErrNotFound = errors.New("not found")
)

// ============================================================================
// Helper functions for error checking
// ============================================================================

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// New is a convenience wrapper for errors.New
var New = errors.New

// IsStorage returns true if err is a storage error.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrStorageClosed)
}

// IsValidation returns true if err is a configuration validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsUnavailable returns true if err indicates a sensor or subsystem that
// cannot be read on this host. Such errors are tick-local, never fatal.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnsupported) || errors.Is(err, ErrUnavailable)
}

// ============================================================================
// Error wrapping utilities
// ============================================================================

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// NewValidation creates a validation error with context.
func NewValidation(field, reason string) error {
	return fmt.Errorf("invalid %s: %s: %w", field, reason, ErrInvalidConfig)
}

// NewStorage creates a storage error with context.
func NewStorage(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStorage)
}
