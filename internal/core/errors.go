package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindDuplicate         Kind = "duplicate_entity"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindUpstream          Kind = "upstream"
	KindInternal          Kind = "internal"
)

// Error is the error type returned by domain and service code.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s (%v)", e.Op, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an error of the given kind without a cause.
func E(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap attaches a kind and operation to an underlying error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Invalid(op, message string) *Error      { return E(KindInvalidInput, op, message) }
func NotFound(op, message string) *Error     { return E(KindNotFound, op, message) }
func Duplicate(op, message string) *Error    { return E(KindDuplicate, op, message) }
func Unauthorized(op, message string) *Error { return E(KindUnauthorized, op, message) }
func Forbidden(op, message string) *Error    { return E(KindForbidden, op, message) }

// Internal wraps an unexpected failure (database, encoding, ...).
func Internal(op string, err error) *Error {
	return Wrap(KindInternal, op, err)
}

// KindOf returns the kind of the first *Error in the chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns a message safe to show to API callers.
// Internal failures never leak their cause.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
