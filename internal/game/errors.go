package game

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
)

// Error is the game layer's error type. Validation errors carry the offending
// field; internal errors wrap the cause, which is logged but never surfaced.
type Error struct {
	Kind  ErrorKind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func authError(msg string) *Error {
	return &Error{Kind: KindAuth, Msg: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func conflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Msg: msg}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// KindOf classifies any error for transport mapping. Unknown errors are
// treated as internal.
func KindOf(err error) ErrorKind {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Kind
	}
	return KindInternal
}

// FieldOf returns the field detail of a validation error, if any.
func FieldOf(err error) string {
	var gameErr *Error
	if errors.As(err, &gameErr) {
		return gameErr.Field
	}
	return ""
}
