package store

import "errors"

// Sentinel errors returned by every backend.
var (
	ErrNotFound = errors.New("resource not found")
	ErrClosed   = errors.New("store is closed")
)
