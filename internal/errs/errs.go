// Package errs defines the error taxonomy shared by the stores, the services
// and the transport adapter.
//
// Every failure the core raises on purpose is an *Error carrying a machine
// code and the HTTP status the caller should surface. errors.Is matches by
// code, so callers compare against the exported sentinels:
//
//	if errors.Is(err, errs.ErrNotFound) { ... }
package errs

import (
	"errors"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeBadRequest   = "BAD_REQUEST"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error is a classified failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	// Err is the underlying cause. It is never rendered to clients.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with Message replaced.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Message: message, Status: e.Status, Err: e.Err}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found", Status: http.StatusNotFound}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized", Status: http.StatusUnauthorized}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden", Status: http.StatusForbidden}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict", Status: http.StatusConflict}
	ErrBadRequest   = &Error{Code: CodeBadRequest, Message: "bad request", Status: http.StatusBadRequest}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal server error", Status: http.StatusInternalServerError}

	// ErrUnknownUser is the single login failure. Unknown email and wrong
	// password both produce it so callers cannot enumerate accounts.
	ErrUnknownUser = &Error{Code: CodeUnauthorized, Message: "unknown user", Status: http.StatusNotFound}
)

func NewNotFoundError(message string) *Error {
	return ErrNotFound.WithMessage(message)
}

func NewForbiddenError(message string) *Error {
	return ErrForbidden.WithMessage(message)
}

func NewBadRequestError(message string) *Error {
	return ErrBadRequest.WithMessage(message)
}

// NewConflictError wraps cause, typically a unique violation.
func NewConflictError(message string, cause error) *Error {
	return &Error{Code: CodeConflict, Message: message, Status: http.StatusConflict, Err: cause}
}

// NewInternalError hides cause behind a generic message.
func NewInternalError(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, Status: http.StatusInternalServerError, Err: cause}
}

// StatusOf returns the HTTP status for err, 500 when err is unclassified.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}
