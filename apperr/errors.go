// Package apperr provides standardized error codes for the storefront SDK.
//
// Every error the SDK surfaces to callers is an *Error carrying a
// machine-readable Code. Callers can match with errors.Is against the
// exported sentinel constructors, or switch on the Code directly:
//
//	review, err := reviews.Get(ctx, id)
//	if apperr.Is(err, apperr.NotFound("")) {
//	    // show a distinguishable "not found" state
//	}
//
// The code also drives the retry decision for reads: see Retryable.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the SDK.
const (
	// CodeTransport means no response was obtained at all.
	CodeTransport Code = "TRANSPORT"
	// CodeTimeout covers request timeouts, locally or server-reported (408).
	CodeTimeout Code = "TIMEOUT"
	// CodeNotFound is a 404; it is never retried and gets its own user message.
	CodeNotFound     Code = "NOT_FOUND"
	CodeValidation   Code = "VALIDATION"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeConflict     Code = "CONFLICT"
	// CodeStorage marks local durable-state failures. These are logged and
	// swallowed by the stores, never shown to users.
	CodeStorage  Code = "STORAGE"
	CodeInternal Code = "INTERNAL"
)

// Error is an SDK error with a code, a user-presentable message,
// and an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches when target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error that wraps a cause while keeping the code taxonomy.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Convenience constructors mirroring the taxonomy.

func Transport(message string, cause error) *Error {
	return Wrap(CodeTransport, message, cause)
}

func Timeout(message string) *Error { return New(CodeTimeout, message) }

func NotFound(message string) *Error {
	if message == "" {
		message = "not found"
	}
	return New(CodeNotFound, message)
}

func Validation(message string) *Error { return New(CodeValidation, message) }

func Unauthorized(message string) *Error { return New(CodeUnauthorized, message) }

func Forbidden(message string) *Error { return New(CodeForbidden, message) }

func Storage(message string, cause error) *Error {
	return Wrap(CodeStorage, message, cause)
}

func Internal(message string) *Error { return New(CodeInternal, message) }

// FromStatus maps an HTTP response status to an error. The message is the
// server-provided one when present, otherwise a generic fallback.
func FromStatus(status int, message string) *Error {
	switch status {
	case http.StatusNotFound:
		return NotFound(message)
	case http.StatusRequestTimeout:
		if message == "" {
			message = "request timed out"
		}
		return Timeout(message)
	case http.StatusUnauthorized:
		if message == "" {
			message = "authentication required"
		}
		return Unauthorized(message)
	case http.StatusForbidden:
		if message == "" {
			message = "permission denied"
		}
		return Forbidden(message)
	case http.StatusConflict:
		if message == "" {
			message = "conflict"
		}
		return New(CodeConflict, message)
	}

	if status >= 400 && status < 500 {
		if message == "" {
			message = "request rejected"
		}
		return Validation(message)
	}

	if message == "" {
		message = "something went wrong"
	}
	return New(CodeInternal, message)
}

// Retryable reports whether a read operation may retry after err.
// Transport failures, timeouts, and server-side errors are retryable;
// every other client error (4xx) is not. Writes never consult this,
// they always run a single attempt.
func Retryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		// Unclassified errors are treated as transport-level failures.
		return true
	}
	switch e.Code {
	case CodeTransport, CodeTimeout, CodeInternal:
		return true
	default:
		return false
	}
}

// UserMessage extracts a human-readable message from err, falling back to
// the provided default when the error carries none.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
