package storage

import "errors"

// Storage errors shared by all backends.
var (
	// ErrNotFound is returned when nothing has been stored yet.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
