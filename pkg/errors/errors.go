// Package errors provides structured error types for mindpack.
//
// Every failure the converter can surface carries a machine-readable [Code] so
// the CLI, the HTTP API and library callers classify errors the same way:
//
//   - INPUT_MISSING: the input document does not exist
//   - MALFORMED_INPUT: the input is not valid JSON/YAML or does not have the
//     mind-map shape (TREE_TOO_DEEP is the depth-guard variant)
//   - RENDERER_UNAVAILABLE: the thumbnail renderer cannot run; recoverable
//   - WRITE_FAILURE: the container could not be written; fatal
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedInput, "rootTopic: expected object, got %s", kind)
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    // report and exit 1
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeWriteFailure, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInputMissing   Code = "INPUT_MISSING"
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeTreeTooDeep    Code = "TREE_TOO_DEEP"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Conversion collaborators
	ErrCodeRendererUnavailable Code = "RENDERER_UNAVAILABLE"

	// Output errors
	ErrCodeWriteFailure Code = "WRITE_FAILURE"

	// Configuration errors
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// TREE_TOO_DEEP also matches MALFORMED_INPUT.
func Is(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return code == ErrCodeMalformedInput && e.Code == ErrCodeTreeTooDeep
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
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err was caused by the input document rather than
// by the environment. The API maps these to 4xx responses.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInputMissing, ErrCodeMalformedInput, ErrCodeTreeTooDeep, ErrCodeInvalidPath:
		return true
	}
	return false
}
