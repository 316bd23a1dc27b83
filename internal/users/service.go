package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Service implements authentication on top of the repository: bcrypt
// password hashing, opaque session tokens, single-use reset tokens.
type Service struct {
	repo       Repository
	logger     *logging.Logger
	sessionTTL time.Duration
	resetTTL   time.Duration
}

// NewService constructs the auth service.
func NewService(repo Repository, logger *logging.Logger, sessionTTL, resetTTL time.Duration) *Service {
	if repo == nil {
		panic("users: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &Service{repo: repo, logger: logger, sessionTTL: sessionTTL, resetTTL: resetTTL}
}

// newToken returns a 64-char opaque hex token.
func newToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	u, err := s.repo.CreateUser(ctx, req.Email, string(hash), req.Name, req.Role)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Login verifies credentials and issues a session.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, nil, ErrUserDisabled
	}

	now := time.Now().UTC()
	session := &Session{
		Token:     newToken(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, nil, err
	}
	s.logger.Info("user logged in", "user_id", u.ID)
	return u, session, nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// ValidateSession resolves a token to its user. An expired session is
// deleted and treated as unauthenticated.
func (s *Service) ValidateSession(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	session, err := s.repo.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.repo.DeleteSession(ctx, token)
		return nil, ErrSessionExpired
	}
	u, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrUserDisabled
	}
	return u, nil
}

// GetByID fetches an account.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.ListUsers(ctx)
}

// Update applies the admin-editable fields.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateUser(ctx, id, req)
}

// Delete removes an account and its sessions.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// RequestPasswordReset issues a single-use token with a short expiry.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*ResetToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	token := &ResetToken{
		Token:     newToken(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(s.resetTTL),
	}
	if err := s.repo.CreateResetToken(ctx, token); err != nil {
		return nil, err
	}
	s.logger.Info("password reset requested", "user_id", u.ID)
	return token, nil
}

// ResetPassword burns the token and stores a fresh hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrWeakPassword
	}
	userID, err := s.repo.ConsumeResetToken(ctx, token, time.Now().UTC())
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	if err := s.repo.SetPassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	s.logger.Info("password reset completed", "user_id", userID)
	return nil
}

// EnsureAdmin seeds the first admin account at startup. Existing
// accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	_, err := s.Register(ctx, &RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Administrator",
		Role:     RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("users: seed admin: %w", err)
	}
	s.logger.Info("seeded default admin", "email", email)
	return nil
}
