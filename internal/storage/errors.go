package storage

import "errors"

var (
	// ErrNotFound indicates that the requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness violation: duplicate content
	// fingerprint, or a tag/category name collision. Callers surface it
	// without retrying.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")
)
