// Package errors provides structured error types for the pinout application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the offending command
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure in the interpreter and layout engine maps to one of a small
// set of codes:
//   - SCHEMA_ERROR: label-column arity problems or LABELS redeclaration
//   - PHASE_ERROR: command used in the wrong phase, or DRAW marker misuse
//   - REFERENCE_ERROR: unresolved type/group/wire/theme name
//   - LAYOUT_ERROR: invalid geometry parameters, empty pin-set, missing anchor
//   - CONFIG_ERROR: unknown page size or malformed numeric option
//   - RESOURCE_ERROR: missing image/icon file at assembly time
//   - PARSE_ERROR: malformed command row in the tabular source
//
// # Usage
//
//	err := errors.New(errors.ErrCodeReference, "undeclared type %q", name)
//	if errors.Is(err, errors.ErrCodeReference) {
//	    // Handle reference error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeResource, origErr, "load image %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// ErrCodeSchema covers label-column arity problems and LABELS redeclaration.
	ErrCodeSchema Code = "SCHEMA_ERROR"

	// ErrCodePhase covers commands used in the wrong phase and DRAW marker misuse.
	ErrCodePhase Code = "PHASE_ERROR"

	// ErrCodeReference covers unresolved type, group, wire, or theme names.
	ErrCodeReference Code = "REFERENCE_ERROR"

	// ErrCodeLayout covers invalid geometry parameters, empty pin-sets, and
	// geometry commands issued before an anchor is established.
	ErrCodeLayout Code = "LAYOUT_ERROR"

	// ErrCodeConfig covers unknown page sizes and malformed numeric options.
	ErrCodeConfig Code = "CONFIG_ERROR"

	// ErrCodeResource covers missing image/icon files discovered at assembly time.
	ErrCodeResource Code = "RESOURCE_ERROR"

	// ErrCodeParse covers malformed command rows in the tabular source.
	ErrCodeParse Code = "PARSE_ERROR"

	// ErrCodeInternal covers unexpected internal errors.
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, an optional command index, and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Command int    // Input command index the error refers to (-1 if unknown)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Command >= 0 {
		msg = fmt.Sprintf("command %d: %s", e.Command, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
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
		Command: -1,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Command: -1,
		Cause:   cause,
	}
}

// At returns a copy of the error annotated with the input command index.
// Processing aborts at the offending command, so the index pinpoints the
// exact row a caller should report.
func (e *Error) At(index int) *Error {
	dup := *e
	dup.Command = index
	return &dup
}

// Is reports whether err carries the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns ErrCodeInternal for non-structured errors so callers always have a
// code to report.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// CommandIndex extracts the command index from an error, or -1 when the error
// carries no location.
func CommandIndex(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Command
	}
	return -1
}
