// Package domainerrors provides coded errors for the service layer.
//
// Stores speak in sentinels (pkg/platform/sentinel); services translate those
// into coded errors carrying a user-facing message, and the HTTP layer maps
// each code onto a status (pkg/platform/httputil).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport mapping.
type Code string

const (
	// CodeValidation marks a caller mistake: missing or malformed field.
	CodeValidation Code = "validation"
	// CodeInvalidInput marks a malformed identifier or enum value.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a reference to an entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness violation or a blocked operation.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a domain invariant breach inside a model.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks an unexpected infrastructure failure.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a user-facing message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// uncoded errors so infrastructure failures never leak details.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message from err, if coded.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
