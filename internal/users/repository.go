package users

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for account, session and reset token storage
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash, name, role string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id int64, req *UpdateRequest) (*User, error)
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error

	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreateResetToken(ctx context.Context, token *ResetToken) error
	// ConsumeResetToken marks the token used and returns its user,
	// failing if the token is unknown, already used, or expired.
	ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error)
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[int64]*User
	byEmail  map[string]int64
	sessions map[string]*Session
	resets   map[string]*ResetToken
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:   1,
		users:    make(map[int64]*User),
		byEmail:  make(map[string]int64),
		sessions: make(map[string]*Session),
		resets:   make(map[string]*ResetToken),
	}
}

// CreateUser inserts a new account.
func (r *InMemoryRepository) CreateUser(ctx context.Context, email, passwordHash, name, role string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return nil, ErrEmailTaken
	}
	u := &User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.users[u.ID] = u
	r.byEmail[email] = u.ID
	cp := *u
	return &cp, nil
}

// GetUserByEmail retrieves an account by email
func (r *InMemoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.users[id]
	return &cp, nil
}

// GetUserByID retrieves an account by ID
func (r *InMemoryRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// ListUsers returns all accounts ordered by ID.
func (r *InMemoryRepository) ListUsers(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateUser applies name, role and active flag.
func (r *InMemoryRepository) UpdateUser(ctx context.Context, id int64, req *UpdateRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u.Name = req.Name
	u.Role = req.Role
	u.IsActive = req.IsActive
	cp := *u
	return &cp, nil
}

// SetPassword replaces the stored hash.
func (r *InMemoryRepository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// DeleteUser removes the account and its sessions.
func (r *InMemoryRepository) DeleteUser(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	delete(r.byEmail, u.Email)
	delete(r.users, id)
	for token, s := range r.sessions {
		if s.UserID == id {
			delete(r.sessions, token)
		}
	}
	return nil
}

// CreateSession stores a session row.
func (r *InMemoryRepository) CreateSession(ctx context.Context, session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *session
	r.sessions[session.Token] = &cp
	return nil
}

// GetSession retrieves a session by token
func (r *InMemoryRepository) GetSession(ctx context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

// DeleteSession removes a session.
func (r *InMemoryRepository) DeleteSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}

// DeleteExpiredSessions sweeps rows past their expiry.
func (r *InMemoryRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, s := range r.sessions {
		if s.Expired(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

// CreateResetToken stores a reset token row.
func (r *InMemoryRepository) CreateResetToken(ctx context.Context, token *ResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *token
	r.resets[token.Token] = &cp
	return nil
}

// ConsumeResetToken validates and burns the token.
func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.resets[token]
	if !ok || t.Used || !now.Before(t.ExpiresAt) {
		return 0, ErrResetTokenInvalid
	}
	t.Used = true
	return t.UserID, nil
}
