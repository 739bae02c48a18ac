package services

import "errors"

// Failure taxonomy. Every operation fails locally: no retries, no partial
// rollback, because validation precedes mutation.
var (
	// ErrNotFound reports an absent entity id or title.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized reports a caller who is not the owner or author.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict reports a uniqueness violation (e.g. username taken).
	ErrConflict = errors.New("conflict")
	// ErrTooLarge reports a response exceeding the encoded-size ceiling.
	// The call fails rather than truncating silently.
	ErrTooLarge = errors.New("response too large")
)
