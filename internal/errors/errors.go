package errors

import (
	"errors"
	"fmt"
)

// Error is the structured error type for docground.
// It provides context for error handling, logging, and user presentation.
type Error struct {
	// Code is the unique error code (e.g., "ERR_201_CORPUS_DIR_NOT_FOUND").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion sets an actionable suggestion for the user.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// New creates a new Error with the given code and message.
func New(code string, category Category, severity Severity, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: category,
		Severity: severity,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code string, category Category, severity Severity, format string, args ...any) *Error {
	return New(code, category, severity, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a code and message.
// Returns nil if err is nil.
func Wrap(err error, code string, category Category, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:     code,
		Message:  message,
		Category: category,
		Severity: SeverityError,
		Cause:    err,
	}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
