// Package apperror carries an HTTP status alongside domain errors so the
// error middleware can map them without string matching.
package apperror

import (
	"errors"
	"net/http"
)

type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on code and message so that a Wrap'd copy of a sentinel still
// satisfies errors.Is against the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns a copy of sentinel that also wraps cause.
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: cause}
}

// Code returns the HTTP status for err, 500 when it carries none.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return http.StatusInternalServerError
}

var (
	ErrNotFound        = New(http.StatusNotFound, "notebook not found")
	ErrContentRequired = New(http.StatusBadRequest, "content required")
	ErrInvalidPayload  = New(http.StatusBadRequest, "invalid json")
	ErrUnauthorized    = New(http.StatusUnauthorized, "unauthorized")
	ErrRuntimeNotReady = New(http.StatusServiceUnavailable, "runtime not ready")
)
