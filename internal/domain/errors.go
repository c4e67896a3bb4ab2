package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	// ErrNotFound means the referenced event or user record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means required fields are missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden means the caller is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a concurrent write raced on the same record.
	// Services retry on it internally; it is never surfaced to callers.
	ErrConflict = errors.New("concurrent update conflict")
)
