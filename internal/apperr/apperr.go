// Package apperr defines the error kinds surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

// Error is an error with a kind and a caller-facing message.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	// Upstream marks dependency failures outside our own store.
	Upstream bool
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports malformed, missing or out-of-range input.
func Validation(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Auth reports a missing or invalid credential.
func Auth(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound reports that no matching record exists.
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Dependency reports a store failure.
func Dependency(message string, err error) error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// Upstream reports a failure of an external service such as the payment processor.
func Upstream(message string, err error) error {
	return &Error{Kind: KindDependency, Message: message, Upstream: true, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDependency:
		if e.Upstream {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-facing message and field of err.
func Message(err error) (message, field string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, e.Field
	}
	return "internal error", ""
}
