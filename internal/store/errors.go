package store

import "errors"

// Sentinel errors callers branch on with errors.Is. Both are wrapped with
// context at the call site, e.g. fmt.Errorf("chemical %d: %w", id, ErrNotFound).
var (
	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was rejected before anything was persisted.
	ErrValidation = errors.New("invalid input")
)
