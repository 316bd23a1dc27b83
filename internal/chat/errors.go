package chat

import "errors"

var (
	// ErrMessageNotFound is returned when a message row is not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrMissingClient is returned when the client reference is absent
	ErrMissingClient = errors.New("client id is required")

	// ErrInvalidSender is returned for senders outside client/bot
	ErrInvalidSender = errors.New("sender must be client or bot")

	// ErrEmptyMessage is returned when the body is empty
	ErrEmptyMessage = errors.New("message body is required")
)
