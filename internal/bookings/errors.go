package bookings

import "errors"

var (
	// ErrBookingNotFound is returned when a booking is not found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrDraftNotFound is returned when a client has no draft
	ErrDraftNotFound = errors.New("booking draft not found")

	// ErrMissingClient is returned when the client reference is absent
	ErrMissingClient = errors.New("client id is required")

	// ErrMissingService is returned when the service name is empty
	ErrMissingService = errors.New("service name is required")
)
