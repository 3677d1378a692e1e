// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, configuration, versions and gates
//   - Window errors (200-299): Lookbacks beyond a snapshot window, readiness
//   - Reading errors (300-399): Readings or replay files missing a named line
//   - Universe errors (400-499): Unknown or duplicated instruments
//   - Engine errors (500-599): Engine lifecycle and step failures
//   - Data source errors (600-699): Replay data source and query failures
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "max_positions must be positive")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeUnknownInstrument, "instrument %s is not tracked", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to read step", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeOutOfRange) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// coder is implemented by every error that carries an ErrorCode.
type coder interface {
	ErrorCode() ErrorCode
}

// ErrorCode returns the code of the error.
func (e *Error) ErrorCode() ErrorCode {
	return e.Code
}

// GetCode extracts the ErrorCode of the first coded error in err's chain.
// Returns ErrCodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// NotReadyError names the history an instrument is still filling. It is a
// warm-up state, not a failure, and always reports ErrCodeNotReady.
type NotReadyError struct {
	Symbol string
	// History is the buffer that is short, e.g. "line window"
	History string
	Have    int
	Need    int
}

// NewNotReadyError creates a NotReadyError for symbol.
func NewNotReadyError(symbol, history string, have, need int) *NotReadyError {
	return &NotReadyError{Symbol: symbol, History: history, Have: have, Need: need}
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s for %s holds %d of %d", e.History, e.Symbol, e.Have, e.Need)
}

func (e *NotReadyError) ErrorCode() ErrorCode {
	return ErrCodeNotReady
}

// Missing is the number of samples still needed.
func (e *NotReadyError) Missing() int {
	return max(e.Need-e.Have, 0)
}

// AsNotReady returns the NotReadyError in err's chain, if any.
func AsNotReady(err error) (*NotReadyError, bool) {
	var notReady *NotReadyError
	if errors.As(err, &notReady) {
		return notReady, true
	}

	return nil, false
}
