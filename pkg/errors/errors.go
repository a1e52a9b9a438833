// Package errors provides structured error types for anchorlayout.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, pipeline and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Structural or input validation failures (rejected up front)
//   - ARITHMETIC: Solver invariant violations (division by a null amount)
//   - REENTRANT_LAYOUT: Layout requested while the same container is laying out
//   - NOT_FOUND: Unknown widget, scene entry or cache item
//   - INTERNAL_*: Unexpected internal errors
//
// Infeasible constraint systems are never reported through this package:
// the solver always produces a best-effort layout and reports dropped
// constraints through its statistics instead.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConnection, "baseline cannot connect to %s", other)
//	if errors.Is(err, errors.ErrCodeInvalidConnection) {
//	    // Handle structural error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidScene, origErr, "failed to decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Structural errors, rejected before any mutation happens
	ErrCodeInvalidConnection Code = "INVALID_CONNECTION"
	ErrCodeInvalidRatio      Code = "INVALID_RATIO"
	ErrCodeInvalidWidget     Code = "INVALID_WIDGET"
	ErrCodeInvalidScene      Code = "INVALID_SCENE"
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"

	// Solver errors
	ErrCodeArithmetic Code = "ARITHMETIC"

	// Usage errors
	ErrCodeReentrantLayout Code = "REENTRANT_LAYOUT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsStructural reports whether err was raised while validating the widget
// tree (connections, ratios, widget kinds or scene documents).
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConnection, ErrCodeInvalidRatio, ErrCodeInvalidWidget, ErrCodeInvalidScene:
		return true
	}
	return false
}
