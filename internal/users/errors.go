package users

import "errors"

var (
	// ErrUserNotFound is returned when an account is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when the email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidEmail is returned for malformed addresses
	ErrInvalidEmail = errors.New("valid email is required")

	// ErrWeakPassword is returned for passwords under 8 characters
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrInvalidRole is returned for roles outside admin/employee
	ErrInvalidRole = errors.New("role must be admin or employee")

	// ErrInvalidCredentials is returned when login fails
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserDisabled is returned when a deactivated account logs in
	ErrUserDisabled = errors.New("account is disabled")

	// ErrSessionNotFound is returned for unknown session tokens
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned for sessions past their expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrResetTokenInvalid is returned for unknown, used or expired reset tokens
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)
