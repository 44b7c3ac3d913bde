// Package errors provides structured error types for photosheet.
//
// Every failure the sheet pipeline can produce is a pure function of its
// input, so errors carry a machine-readable [Code] that hosts (CLI, HTTP API)
// map to exit codes or status codes, plus a message that is safe to show
// verbatim to the user.
//
// # Error Codes
//
//   - VALIDATION: unknown standard or paper, out-of-range DPI, bad counts
//   - INVALID_IMAGE: zero-dimension or undecodable source
//   - SHEET_TOO_SMALL: the grid capacity for the requested sheet is zero
//   - UNSUPPORTED_FORMAT: unknown output format
//
// # Usage
//
//	err := errors.Validation("unknown size standard %q", code)
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // reject the request
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidImage, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline errors
	ErrCodeValidation        Code = "VALIDATION"
	ErrCodeInvalidImage      Code = "INVALID_IMAGE"
	ErrCodeSheetTooSmall     Code = "SHEET_TOO_SMALL"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Host surface errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidPath  Code = "INVALID_PATH"
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code           // Machine-readable error code
	Message string         // Human-readable message
	Cause   error          // Underlying error (optional)
	Details map[string]any // Diagnostics for the caller (optional)
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

// With attaches a diagnostic key/value and returns e.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
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

// Validation reports input rejected before any processing.
func Validation(format string, args ...any) *Error {
	return New(ErrCodeValidation, format, args...)
}

// InvalidImage reports a source image the pipeline cannot work with.
func InvalidImage(format string, args ...any) *Error {
	return New(ErrCodeInvalidImage, format, args...)
}

// UnsupportedFormat reports an output format that no encoder handles.
func UnsupportedFormat(format string) *Error {
	return New(ErrCodeUnsupportedFormat, "unsupported output format: %q", format)
}

// SheetTooSmall reports a zero-capacity grid. The usable area and cell size
// are attached as details so the caller can pick a larger paper, a smaller
// photo, or smaller margins.
func SheetTooSmall(usableW, usableH, cellW, cellH int) *Error {
	return New(ErrCodeSheetTooSmall,
		"no copy fits: usable area %dx%d px, cell %dx%d px", usableW, usableH, cellW, cellH).
		With("usable_width", usableW).
		With("usable_height", usableH).
		With("cell_width", cellW).
		With("cell_height", cellH)
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

// GetDetails returns the diagnostics attached to the first *Error in the chain.
func GetDetails(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
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

// QualityWarning is a non-fatal advisory attached to a successful result.
type QualityWarning struct {
	Kind    string  `json:"kind"`
	Message string  `json:"message"`
	Factor  float64 `json:"factor,omitempty"`
}

// String implements fmt.Stringer.
func (w QualityWarning) String() string {
	return w.Message
}
