package domain

import "errors"

var (
	// ErrSessionExpired is returned when attaching a wallet to a session past its expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrUserNotFound is returned when an operation requires a user row that does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrConstraintViolation is returned when the storage engine rejects a write
	// on a uniqueness constraint; callers must check whether the record already
	// landed before retrying
	ErrConstraintViolation = errors.New("constraint violation")
)
