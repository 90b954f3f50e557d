package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrClosed is returned by a cache used after Close.
	ErrClosed = errors.New("cache closed")

	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("cache unavailable")
)
