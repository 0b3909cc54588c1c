package session

import "errors"

var (
	// ErrInvalidSessionID is returned when a session id is empty or unsafe
	ErrInvalidSessionID = errors.New("invalid session id")

	// ErrNotFound is returned when no session exists at a resolvable location
	ErrNotFound = errors.New("session not found")

	// ErrCorruptData is returned when a stored record exists but cannot be parsed
	ErrCorruptData = errors.New("session data is corrupt")

	// ErrStorage is returned when the backing storage is unavailable or a write failed
	ErrStorage = errors.New("session storage failure")
)
