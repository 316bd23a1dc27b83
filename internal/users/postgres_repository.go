package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores accounts, sessions and reset tokens.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, name, role, is_active, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new account.
func (r *PostgresRepository) CreateUser(ctx context.Context, email, passwordHash, name, role string) (*User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns + `
	`
	u, err := scanUser(r.pool.QueryRow(ctx, query, email, passwordHash, name, role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches one account by email.
func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return u, nil
}

// GetUserByID fetches one account by ID.
func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return u, nil
}

// ListUsers returns all accounts ordered by ID.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("users: list failed: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("users: scan failed: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("users: rows failed: %w", err)
	}
	return out, nil
}

// UpdateUser applies name, role and active flag.
func (r *PostgresRepository) UpdateUser(ctx context.Context, id int64, req *UpdateRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE users SET name = $2, role = $3, is_active = $4
		WHERE id = $1
		RETURNING ` + userColumns + `
	`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id, req.Name, req.Role, req.IsActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: update failed: %w", err)
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (r *PostgresRepository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("users: set password failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes the account. Sessions cascade.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("users: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateSession stores a session row.
func (r *PostgresRepository) CreateSession(ctx context.Context, session *Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("users: session insert failed: %w", err)
	}
	return nil
}

// GetSession retrieves a session by token.
func (r *PostgresRepository) GetSession(ctx context.Context, token string) (*Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1
	`, token).Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("users: session select failed: %w", err)
	}
	return &s, nil
}

// DeleteSession removes a session.
func (r *PostgresRepository) DeleteSession(ctx context.Context, token string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("users: session delete failed: %w", err)
	}
	return nil
}

// DeleteExpiredSessions sweeps rows past their expiry.
func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("users: session sweep failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CreateResetToken stores a reset token row.
func (r *PostgresRepository) CreateResetToken(ctx context.Context, token *ResetToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("users: reset token insert failed: %w", err)
	}
	return nil
}

// ConsumeResetToken marks the token used in one statement so a token
// can never be redeemed twice.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, token string, now time.Time) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND NOT used AND expires_at > $2
		RETURNING user_id
	`, token, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrResetTokenInvalid
		}
		return 0, fmt.Errorf("users: reset token consume failed: %w", err)
	}
	return userID, nil
}
