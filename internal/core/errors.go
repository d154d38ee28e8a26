package core

import "errors"

var (
	// ErrNotFound is returned by caches and stores when no entry exists
	ErrNotFound = errors.New("entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("entry expired")
)

// ErrUnavailable marks a collaborator that is temporarily refusing calls.
// Results produced while it is unavailable must not be cached.
var ErrUnavailable = errors.New("temporarily unavailable")
