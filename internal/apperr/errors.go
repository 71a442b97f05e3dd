// Package apperr defines the single error shape the API reports: an HTTP
// status, a client-facing message and, optionally, the underlying cause.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Error is an error with the HTTP status it should be answered with.
type Error struct {
	Status  int
	Message string
	Err     error

	stack []uintptr
}

// New creates an Error without a cause.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message, stack: callers()}
}

// Wrap attaches a status and message to cause.
func Wrap(status int, message string, cause error) *Error {
	return &Error{Status: status, Message: message, Err: cause, stack: callers()}
}

// Shorthands for the common client errors.
func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }

// Internal hides cause behind a generic 500 message.
func Internal(cause error) *Error {
	return Wrap(http.StatusInternalServerError, "Something went wrong", cause)
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.Err }

// Stack renders the call stack captured when the error was created.
func (e *Error) Stack() string {
	if len(e.stack) == 0 {
		return ""
	}
	var b strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

// From returns the *Error in err's chain, or nil.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf returns the HTTP status for err, 500 when it carries none.
func StatusOf(err error) int {
	if ae := From(err); ae != nil {
		return ae.Status
	}
	return http.StatusInternalServerError
}

func callers() []uintptr {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}
