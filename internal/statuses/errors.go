package statuses

import "errors"

var (
	// ErrStatusNotFound is returned when a custom status is not found
	ErrStatusNotFound = errors.New("status not found")

	// ErrMissingKey is returned when the key is empty
	ErrMissingKey = errors.New("status key is required")

	// ErrMissingLabel is returned when the label is empty
	ErrMissingLabel = errors.New("status label is required")

	// ErrReservedKey is returned when the key collides with a base status
	ErrReservedKey = errors.New("status key is reserved")

	// ErrDuplicateKey is returned when the key already exists
	ErrDuplicateKey = errors.New("status key already exists")
)
