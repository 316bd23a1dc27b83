package services

import "errors"

var (
	// ErrServiceNotFound is returned when a catalog entry is not found
	ErrServiceNotFound = errors.New("service not found")

	// ErrMissingKey is returned when the service key is empty
	ErrMissingKey = errors.New("service key is required")

	// ErrMissingName is returned when the name is empty
	ErrMissingName = errors.New("service name is required")

	// ErrNegativePrice is returned for prices below zero
	ErrNegativePrice = errors.New("price must not be negative")

	// ErrDuplicateKey is returned when the key already exists
	ErrDuplicateKey = errors.New("service key already exists")
)
