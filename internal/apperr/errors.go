// Package apperr holds the error taxonomy shared by the store implementations,
// the service layer and the HTTP handlers.
//
// Store drivers translate their own errors (pgx.ErrNoRows, unique violations)
// into these values so callers never depend on a particular backend.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: referenced user, machine, course or booking is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict: double booking or a stale status caught at write time.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized: the actor lacks the role for the operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnauthenticated: missing, bad or expired credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// ValidationError reports malformed input. Code is a stable machine-readable
// identifier surfaced to API clients.
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func Validation(code, message string) error {
	return ValidationError{Code: code, Message: message}
}

// AsValidation unwraps err into a ValidationError when it carries one.
func AsValidation(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return ValidationError{}, false
}
