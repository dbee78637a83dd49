package tilefs

import "errors"

var (
	// ErrInvalidPath is returned for grammar violations before any I/O
	ErrInvalidPath = errors.New("invalid path")
	// ErrUnauthorized marks writes attempted by an identity that does not control the target
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned by stores for unknown locators
	ErrNotFound = errors.New("not found")
	// ErrOrphanWrite marks a committed node that could not be linked into its parent
	ErrOrphanWrite = errors.New("orphan write")
)
