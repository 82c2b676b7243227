// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer translates them to status
// codes and machine-readable reason strings in one place (handler.writeError).
// Callers check categories with errors.Is against the sentinel values, and
// extract the human-readable message with errors.As(*AppError).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAlreadyLiked    = errors.New("already liked")
	ErrNotLiked        = errors.New("not liked")
	ErrTransient       = errors.New("transient failure")
)

type AppError struct {
	Err     error  // category sentinel (one of the Err* values above)
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
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

// Unauthenticated returns an AppError for a missing, malformed, or unverified
// credential. HTTP handlers (and the auth middleware) map this to 401.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// AlreadyLiked reports a create-like for a (post, user) pair that already has
// one. Mapped to 400 with reason "already_liked" — the client treats it as a
// resync signal, never a retry signal.
func AlreadyLiked(postID int64) *AppError {
	return &AppError{
		Err:     ErrAlreadyLiked,
		Message: fmt.Sprintf("post %d is already liked", postID),
	}
}

// NotLiked reports a delete-like for a (post, user) pair that has no like.
func NotLiked(postID int64) *AppError {
	return &AppError{
		Err:     ErrNotLiked,
		Message: fmt.Sprintf("post %d is not liked", postID),
	}
}

// Transient marks a failure worth resyncing over: the network was unreachable
// or the peer did not produce a usable response.
func Transient(message string) *AppError {
	return &AppError{
		Err:     ErrTransient,
		Message: message,
	}
}
