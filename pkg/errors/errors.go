// Package errors provides structured error types for the treeline
// surfaces.
//
// The engine itself (pkg/codec, pkg/stree) reports typed errors; this
// package gives the CLI and the HTTP API a uniform, machine-readable
// shape to present them in:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly messages separated from code prefixes
//   - Error wrapping with cause preservation
//
// # Error Codes
//
// Codes follow a hierarchical naming convention:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: resource lookups that came up empty
//   - Engine codes (UNKNOWN_TAG, MALFORMED_SCALAR, ...) mirror the typed
//     errors of pkg/codec one for one; [FromEngine] performs the mapping
//   - INTERNAL_ERROR: everything unexpected
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // handle validation failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, cause, "saving document %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the treeline surfaces.
const (
	// Input validation errors.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidTag    Code = "INVALID_TAG"
	ErrCodeInvalidName   Code = "INVALID_NAME"

	// Resource lookups.
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeDuplicateName    Code = "DUPLICATE_NAME"

	// Engine errors, mirroring pkg/codec's taxonomy.
	ErrCodeUnsupportedValue Code = "UNSUPPORTED_VALUE"
	ErrCodeUnknownTag       Code = "UNKNOWN_TAG"
	ErrCodeUnknownAnchor    Code = "UNKNOWN_ANCHOR"
	ErrCodeMalformedScalar  Code = "MALFORMED_SCALAR"
	ErrCodeMalformedInput   Code = "MALFORMED_INPUT"
	ErrCodeDepthExceeded    Code = "DEPTH_EXCEEDED"

	// Infrastructure errors.
	ErrCodeStorage  Code = "STORAGE_ERROR"
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

// Is reports whether err carries the given error code. It unwraps the
// error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available. Returns
// the empty string if the chain holds no *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-facing message for the error: the message
// without the code prefix for *Error, the error text as-is otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
