// Package apperror defines the error taxonomy shared by services and handlers.
//
// Every error that reaches the HTTP layer is either an *Error or gets wrapped
// into an Internal one, so the response envelope always carries a stable
// status code.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuth:
		return "AuthError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindTooManyRequests:
		return "TooManyRequests"
	case KindDependency:
		return "DependencyError"
	default:
		return "InternalError"
	}
}

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, apperror.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind markers for errors.Is.
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrAuth       = &Error{Kind: KindAuth}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrDependency = &Error{Kind: KindDependency}
	ErrInternal   = &Error{Kind: KindInternal}
)

func newError(kind Kind, msg string, details []string) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

func Validation(msg string, details ...string) *Error {
	return newError(KindValidation, msg, details)
}

func Auth(msg string) *Error { return newError(KindAuth, msg, nil) }

func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

func TooManyRequests(msg string) *Error { return newError(KindTooManyRequests, msg, nil) }

// Dependency wraps a failure of a remote collaborator (media store, database).
func Dependency(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Message: msg, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From returns err as an *Error, wrapping unclassified errors as Internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Something went wrong", err)
}

// KindOf returns the kind of err, KindInternal for unclassified errors.
func KindOf(err error) Kind {
	return From(err).Kind
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	return KindOf(err).Status()
}
