package api

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindTooManyRequests
	KindProvider
)

// Status maps a Kind to the HTTP status written in the envelope response.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
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

// Error is the error type every request-scoped failure is reduced to.
// Title becomes the envelope "error" field and Detail the "message" field.
type Error struct {
	Kind   Kind
	Title  string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Title
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil && e.Detail != e.Err.Error() {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int { return e.Kind.Status() }

func Validation(title, detail string) *Error {
	return &Error{Kind: KindValidation, Title: title, Detail: detail}
}

func Unauthenticated(title, detail string) *Error {
	return &Error{Kind: KindUnauthenticated, Title: title, Detail: detail}
}

func Forbidden(title, detail string) *Error {
	return &Error{Kind: KindForbidden, Title: title, Detail: detail}
}

func NotFound(title, detail string) *Error {
	return &Error{Kind: KindNotFound, Title: title, Detail: detail}
}

func Conflict(title, detail string) *Error {
	return &Error{Kind: KindConflict, Title: title, Detail: detail}
}

func TooManyRequests(title string) *Error {
	return &Error{Kind: KindTooManyRequests, Title: title}
}

// Provider wraps an unexpected failure of the remote storage provider. The
// provider's message is passed through as the detail.
func Provider(title string, err error) *Error {
	e := &Error{Kind: KindProvider, Title: title, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

func Internal(title string, err error) *Error {
	e := &Error{Kind: KindInternal, Title: title, Err: err}
	if err != nil {
		e.Detail = err.Error()
	}
	return e
}

// AsError returns err as *Error, converting foreign errors into an
// internal error.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal("Error interno del servidor", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
