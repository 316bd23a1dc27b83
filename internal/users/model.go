package users

import (
	"strings"
	"time"
)

// Roles understood by the admin surface.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is an administrator or employee account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a bearer credential with a hard expiry.
type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// ResetToken is a single-use password reset credential.
type ResetToken struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Validate normalizes and validates the register request
func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return ErrInvalidEmail
	}
	if len(r.Password) < 8 {
		return ErrWeakPassword
	}
	switch r.Role {
	case "":
		r.Role = RoleEmployee
	case RoleAdmin, RoleEmployee:
	default:
		return ErrInvalidRole
	}
	return nil
}

// UpdateRequest carries the admin-editable account fields.
type UpdateRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Validate validates the update request
func (r *UpdateRequest) Validate() error {
	switch r.Role {
	case RoleAdmin, RoleEmployee:
		return nil
	default:
		return ErrInvalidRole
	}
}
