package service

import (
	"errors"
	"fmt"

	"boardshoot-server/internal/repository"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrFolderNotFound  = repository.ErrFolderNotFound
	ErrNoteNotFound    = repository.ErrNoteNotFound
	ErrVersionConflict = repository.ErrVersionConflict

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrImageRequired      = errors.New("image is required")
	ErrImageNotFound      = errors.New("image not found in note")
	ErrInvalidReorder     = errors.New("invalid image order")
)

// ValidationError is a rejected request. Message is safe to show to clients.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// ConflictError reports a stale expectedVersion. It matches ErrVersionConflict.
type ConflictError struct {
	Resource string
	Expected int64
	Current  int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s was modified: expected version %d, current version %d", e.Resource, e.Expected, e.Current)
}

func (e *ConflictError) Unwrap() error {
	return ErrVersionConflict
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrFolderNotFound) || errors.Is(err, ErrNoteNotFound)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func checkVersion(resource string, expected *int64, current int64) error {
	if expected != nil && *expected != current {
		return &ConflictError{Resource: resource, Expected: *expected, Current: current}
	}
	return nil
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
