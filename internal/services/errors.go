package services

import (
	"errors"
	"fmt"
	"log/slog"
)

type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindValidation      ErrorKind = "validation"
	KindConflict        ErrorKind = "conflict"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindPersistence     ErrorKind = "persistence"
)

// Error is the structured failure returned by every service operation.
// Code narrows the kind (e.g. "username_taken") and Message is safe to show
// to end users. Err carries the underlying store error for persistence
// failures and is never exposed to clients.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// holds for every forbidden failure regardless of code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Code == "" || t.Code == e.Code)
}

var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated, Code: "unauthenticated", Message: "you need to sign in"}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrPersistence     = &Error{Kind: KindPersistence}
)

const genericMessage = "something went wrong, please try again"

func validationError(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

func conflictError(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

func forbiddenError(code, message string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: message}
}

func notFoundError(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// persistenceError logs the store failure and returns a generic error.
func persistenceError(action string, err error, attrs ...any) *Error {
	args := append([]any{"action", action, "error", err}, attrs...)
	slog.Error("store operation failed", args...)
	return &Error{
		Kind:    KindPersistence,
		Code:    "internal",
		Message: genericMessage,
		Err:     fmt.Errorf("%s: %w", action, err),
	}
}

// KindOf reports the kind of err, treating unknown errors as persistence failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}
