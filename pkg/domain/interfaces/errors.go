package interfaces

import "errors"

var (
	// ErrNotFound is returned (wrapped) when a record does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned (wrapped) when a write collides with an
	// existing record, for example a unique constraint violation
	ErrDuplicate = errors.New("duplicate")
)
