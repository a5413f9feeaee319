// Package errx defines the closed set of operational error kinds shared by
// every layer of the platform. Handlers raise one of these kinds and the
// terminal HTTP handler serializes it; they never pick status codes directly.
package errx

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Code is a stable machine-readable error code surfaced to clients. The set
// is closed: codes are decided at the throw site, never derived from message
// text, so client-facing codes survive message wording changes.
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeValidation      Code = "validation_error"
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeConflict        Code = "conflict"
	CodeRateLimited     Code = "rate_limit_exceeded"
	CodeOriginForbidden Code = "origin_not_allowed"
	CodeInternal        Code = "internal_server_error"
)

// Error is the one shape every failure must be representable as before it
// crosses a process boundary. Operational distinguishes expected domain
// failures (bad input, missing resource) from defects; observability layers
// alert on Operational == false.
type Error struct {
	Status      int       `json:"-"`
	Code        Code      `json:"code"`
	Message     string    `json:"message"`
	Details     any       `json:"details"`
	Operational bool      `json:"-"`
	Timestamp   time.Time `json:"timestamp"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithDetails attaches structured detail (e.g. per-field validation results)
// to the client-visible payload.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// WithCause records the underlying error for logs. The cause is never
// serialized to clients.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func newError(status int, code Code, message string, operational bool) *Error {
	return &Error{
		Status:      status,
		Code:        code,
		Message:     message,
		Operational: operational,
		Timestamp:   time.Now().UTC(),
	}
}

func NotFound(message string) *Error {
	return newError(http.StatusNotFound, CodeNotFound, message, true)
}

func Validation(message string) *Error {
	return newError(http.StatusBadRequest, CodeValidation, message, true)
}

func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, CodeUnauthorized, message, true)
}

func Forbidden(message string) *Error {
	return newError(http.StatusForbidden, CodeForbidden, message, true)
}

func Conflict(message string) *Error {
	return newError(http.StatusConflict, CodeConflict, message, true)
}

func RateLimited(message string) *Error {
	return newError(http.StatusTooManyRequests, CodeRateLimited, message, true)
}

// OriginForbidden is raised by the origin gate. It carries its own code,
// distinct from a plain Forbidden, so client tooling can tell "your origin
// is not permitted" apart from an authorization failure.
func OriginForbidden(message string) *Error {
	return newError(http.StatusForbidden, CodeOriginForbidden, message, true)
}

// Internal marks a defect. The message is logged in full but clients only
// ever see a generic message; see httpx.WriteError.
func Internal(message string) *Error {
	return newError(http.StatusInternalServerError, CodeInternal, message, false)
}

// FromCode rehydrates a typed error from a known code, for failures relayed
// from a downstream call rather than thrown at a specific call site. Unknown
// codes collapse to Internal.
func FromCode(code Code, message string) *Error {
	switch code {
	case CodeNotFound:
		return NotFound(message)
	case CodeValidation:
		return Validation(message)
	case CodeUnauthorized:
		return Unauthorized(message)
	case CodeForbidden:
		return Forbidden(message)
	case CodeConflict:
		return Conflict(message)
	case CodeRateLimited:
		return RateLimited(message)
	case CodeOriginForbidden:
		return OriginForbidden(message)
	default:
		return Internal(message)
	}
}

// From coerces an arbitrary error to a taxonomy error. Errors already in the
// taxonomy pass through unmodified; anything else is wrapped as an Internal
// defect with the original error preserved as cause.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("an unexpected error occurred").WithCause(err)
}
