package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target carries the same code, so errors.Is works against
// the predefined values after Clone or Wrap.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrTooManyCalls = New("RATE_LIMITED", http.StatusTooManyRequests, "rate limit exceeded")

	// ErrInvalidInput rejects a whole availability request: malformed dates,
	// non-positive durations, unknown employees or services.
	ErrInvalidInput = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")

	// ErrCacheMiss signals an absent cache entry and is never surfaced to clients.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrCalendarNotConfigured means an employee has no external calendar linked.
	ErrCalendarNotConfigured = New("CALENDAR_NOT_CONFIGURED", http.StatusNotFound, "external calendar not configured")
	// ErrCalendarUnauthorized means the stored authorization was revoked or expired.
	ErrCalendarUnauthorized = New("CALENDAR_UNAUTHORIZED", http.StatusUnauthorized, "external calendar authorization expired")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// InvalidInput is shorthand for a cloned ErrInvalidInput with a formatted message.
func InvalidInput(format string, args ...any) *Error {
	return Clone(ErrInvalidInput, fmt.Sprintf(format, args...))
}
