package clients

import "errors"

var (
	// ErrClientNotFound is returned when a client is not found
	ErrClientNotFound = errors.New("client not found")

	// ErrInvalidStatus is returned when a status value is empty
	ErrInvalidStatus = errors.New("status is required")

	// ErrMissingInstagramID is returned when the external ID is empty
	ErrMissingInstagramID = errors.New("instagram id is required")
)
