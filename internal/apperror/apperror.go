// Package apperror defines the domain error taxonomy shared by the service
// and handler layers. Services return these errors; the handler layer maps
// them to HTTP status codes in one place.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors used with errors.Is at the handler boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries a client-safe message alongside the sentinel it wraps.
// Anything not wrapped in an AppError is treated as an internal error and
// never detailed to the client.
type AppError struct {
	Err     error  // sentinel (ErrNotFound, ErrValidation, ...)
	Message string // human-readable, safe to return to the client
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a unique-constraint violation on the given field,
// e.g. a username or email that is already taken.
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already in use", field),
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for authentication failures: missing,
// malformed, tampered or expired credentials, and principals that no longer
// exist. HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
