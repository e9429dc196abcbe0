package service

import (
	"errors"
	"fmt"

	"github.com/Rampantfam/rampant-notion-mvp-sub000/internal/repository"
)

// ErrorKind classifies service failures so handlers can pick a status code.
type ErrorKind string

const (
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindInvalidInput           ErrorKind = "INVALID_INPUT"
	KindInvalidState           ErrorKind = "INVALID_STATE"
	KindInvalidAction          ErrorKind = "INVALID_ACTION"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindCancellationFailed     ErrorKind = "CANCELLATION_FAILED"
	KindPersistenceUnavailable ErrorKind = "PERSISTENCE_UNAVAILABLE"
)

// Error is returned by every write operation. Match it with errors.Is against
// the Err* sentinels below.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthorized           = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrForbidden              = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrInvalidInput           = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidState           = &Error{Kind: KindInvalidState, Message: "invalid state"}
	ErrInvalidAction          = &Error{Kind: KindInvalidAction, Message: "invalid action"}
	ErrNotFound               = &Error{Kind: KindNotFound, Message: "not found"}
	ErrCancellationFailed     = &Error{Kind: KindCancellationFailed, Message: "cancellation failed"}
	ErrPersistenceUnavailable = &Error{Kind: KindPersistenceUnavailable, Message: "persistence unavailable"}
)

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a service error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// storeError converts a repository failure into a service error.
func storeError(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(KindNotFound, "%s not found", entity)
	}
	return &Error{Kind: KindPersistenceUnavailable, Message: "failed to access " + entity, Err: err}
}

func requireActor(actor *Actor) error {
	if actor == nil {
		return ErrUnauthorized
	}
	return nil
}
