// Package errors provides structured error types for the Flowscope
// application.
//
// The core visibility engine itself never returns errors: lookups report
// (zero, false) and mutations referencing missing ids are no-ops. Structured
// errors exist for the boundaries around it - document ingestion, layout,
// rendering, and the HTTP API - where machine-readable codes let the CLI and
// server map failures to consistent messages and status codes.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: document or input validation failures
//   - NOT_FOUND_*: resource not found
//   - INTERNAL_*: unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDocument, "edge %s references unknown node %s", eid, nid)
//	if errors.Is(err, errors.ErrCodeInvalidDocument) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeLayout, origErr, "layout for %d nodes", n)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document validation errors, raised before any core mutation.
	ErrCodeInvalidDocument  Code = "INVALID_DOCUMENT"
	ErrCodeInvalidHierarchy Code = "INVALID_HIERARCHY"
	ErrCodeUnknownNode      Code = "UNKNOWN_NODE"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Resource not found errors.
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Collaborator failures.
	ErrCodeLayout Code = "LAYOUT_ERROR"
	ErrCodeRender Code = "RENDER_ERROR"

	// Internal errors.
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
