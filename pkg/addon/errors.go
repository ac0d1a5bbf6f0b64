package addon

import "errors"

// Failure classes reported by a source pipeline. Plain IO errors pass
// through unwrapped.
var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrInvalidDescriptor = errors.New("invalid addon descriptor")
	ErrFetch             = errors.New("fetch failed")
	ErrArchive           = errors.New("malformed archive")
)
