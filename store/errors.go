package store

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnknownDriver = errors.New("unknown store driver")
)
