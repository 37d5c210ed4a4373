// Package service holds the application's use cases: account signup and
// login, catalog management, review moderation and the activity feed.
// Services validate input, call the repositories and translate storage
// sentinels into *Error values that carry a user-facing message.
package service

import (
	"errors"
	"fmt"
)

// Error kinds.  Match them with errors.Is; the handler layer maps each to an
// HTTP status.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
)

// Error is a failure with a message that is safe to show the user.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(msg string) *Error { return &Error{Kind: ErrNotFound, Message: msg} }

func authError(msg string) *Error { return &Error{Kind: ErrAuth, Message: msg} }

// Message returns the user-facing message of err, or fallback when err is
// not a service error.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return fallback
}
