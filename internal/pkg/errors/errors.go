// Package errors provides coded errors for the animagen services.
// Codes categorize failures so handlers and the worker can map them to
// HTTP statuses and job outcomes without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents an error code for categorization.
type Code string

const (
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeInvalidRequest   Code = "INVALID_REQUEST"
	CodeNotFound         Code = "NOT_FOUND"
	CodeTimeout          Code = "TIMEOUT"
	CodeQueueUnavailable Code = "QUEUE_UNAVAILABLE"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeUpstreamDegraded Code = "UPSTREAM_DEGRADED"
	CodeRenderFailed     Code = "RENDER_FAILED"
)

// Error is the error type carried across component boundaries.
type Error struct {
	// Code categorizes the failure.
	Code Code
	// Message is the human-readable error message.
	Message string
	// Op is the operation that failed (e.g., "pipeline.submit").
	Op string
	// Err is the underlying error, if any.
	Err error
	// Fields carries additional context for logging.
	Fields map[string]any
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString("[")
		b.WriteString(string(e.Code))
		b.WriteString("] ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithField attaches a context field to the error.
func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// HTTPStatus maps the error code to an HTTP status for API responses.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest:
		return 400
	case CodeNotFound:
		return 404
	case CodeTimeout:
		return 504
	case CodeQueueUnavailable, CodeStoreUnavailable:
		return 503
	default:
		return 500
	}
}

// New creates a new error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps err with an operation and message. The code of an inner
// *Error is preserved so the outermost HTTP mapping stays correct.
func Wrap(err error, op string, message string) *Error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	var e *Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return &Error{Code: code, Message: message, Op: op, Err: err}
}

// WrapWithCode wraps err under a specific code, overriding any inner code.
func WrapWithCode(err error, code Code, op string, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Op: op, Err: err}
}

// InvalidRequest creates a client-caused validation error.
func InvalidRequest(message string) *Error {
	return New(CodeInvalidRequest, message)
}

// NotFound creates a not found error for a resource.
func NotFound(resource, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, id)).
		WithField("resource", resource).
		WithField("id", id)
}

// QueueUnavailable creates an infrastructure error for the work queue.
func QueueUnavailable(err error, op string) *Error {
	return WrapWithCode(err, CodeQueueUnavailable, op, "work queue unavailable")
}

// StoreUnavailable creates an infrastructure error for the job record store.
func StoreUnavailable(err error, op string) *Error {
	return WrapWithCode(err, CodeStoreUnavailable, op, "job record store unavailable")
}

// RenderFailed creates a terminal render error.
func RenderFailed(err error, message string) *Error {
	return WrapWithCode(err, CodeRenderFailed, "renderer", message)
}

// GetCode extracts the error code, defaulting to CodeInternal.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetHTTPStatus extracts the HTTP status for an error.
func GetHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return 500
}

// IsCode checks whether err carries the given code.
func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNotFound)
}

// As is a convenience wrapper for errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Is is a convenience wrapper for errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
