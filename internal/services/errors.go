package services

import (
	"errors"

	"github.com/alumnet/apiserver/internal/membership"
	"github.com/alumnet/apiserver/internal/store"
)

// Error kinds. Handlers map each kind to an HTTP status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Error is a classified error with a message safe to show to clients.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, message string) error {
	return &Error{Err: kind, Message: message}
}

func validationError(message string) error { return newError(ErrValidation, message) }

func notFoundError(message string) error { return newError(ErrNotFound, message) }

func forbiddenError(message string) error { return newError(ErrForbidden, message) }

func conflictError(message string) error { return newError(ErrConflict, message) }

// translate classifies store errors. what names the resource in not found
// messages, e.g. "Job". Unknown errors are returned unchanged.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFoundError(what + " not found")
	case errors.Is(err, store.ErrDuplicate):
		return conflictError(what + " already exists")
	case errors.Is(err, membership.ErrAlreadyMember):
		return conflictError("Already a member")
	case errors.Is(err, membership.ErrCapacityExceeded):
		return conflictError(what + " is full")
	}
	return err
}

// Message returns the client-facing message of a classified error.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Error(), true
	}
	return "", false
}

func isCapacityExceeded(err error) bool {
	return errors.Is(err, membership.ErrCapacityExceeded)
}
