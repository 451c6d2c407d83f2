package service

import (
	"errors"
	"fmt"

	"blog_backend/internal/repository"
)

// Error categories. Handlers map each one to a single HTTP status.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
)

var (
	ErrUserAlreadyExists   = fmt.Errorf("%w: username is already taken", ErrConflict)
	ErrInvalidLogin        = fmt.Errorf("%w: invalid username or password", ErrInvalidCredential)
	ErrWrongSecretPassword = fmt.Errorf("%w: incorrect post password", ErrInvalidCredential)
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrPostNotFound        = fmt.Errorf("%w: post not found", ErrNotFound)
	ErrCommentNotFound     = fmt.Errorf("%w: comment not found", ErrNotFound)
	ErrStaleVersion        = fmt.Errorf("%w: resource was modified by another request", ErrConflict)
)

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// storeError translates repository sentinels into service errors.
func storeError(err error, notFound error, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrStaleVersion
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
