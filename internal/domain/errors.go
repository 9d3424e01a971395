package domain

import (
	"errors"
	"net/http"
)

// Kind classifies a failure independently of the transport.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindInternal   Kind = "internal"
)

// Error is returned by every service method. Code is the HTTP status the
// transport should answer with.
type Error struct {
	Kind   Kind
	Code   int
	Msg    string
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(fields map[string][]string) error {
	return &Error{Kind: KindValidation, Code: http.StatusBadRequest, Msg: "The given data was invalid.", Fields: fields}
}

// Invalid is a single-field Validation.
func Invalid(field, msg string) error {
	return Validation(map[string][]string{field: {msg}})
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindAuth, Code: http.StatusUnauthorized, Msg: msg}
}

// AuthFailed covers credential mismatches that are not answered with 401,
// e.g. a wrong current password.
func AuthFailed(code int, msg string) error {
	return &Error{Kind: KindAuth, Code: code, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Code: http.StatusForbidden, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Code: http.StatusNotFound, Msg: msg}
}

func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Code: http.StatusBadRequest, Msg: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Code: http.StatusInternalServerError, Msg: msg, Err: err}
}

// KindOf reports the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
