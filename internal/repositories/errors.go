package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every repository when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a unique field (email, idempotency key) is already taken.
	ErrDuplicate = errors.New("duplicate record")
)
