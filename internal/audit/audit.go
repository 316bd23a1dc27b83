// Package audit appends the admin activity trail. Writes are
// best-effort: a failed log entry never fails the triggering action.
package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mlediamant/salon-crm/pkg/logging"
)

// Entry is one activity log row.
type Entry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id,omitempty"`
	UserEmail  string    `json:"user_email"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}

// Repository defines the interface for activity log storage
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit int) ([]*Entry, error)
}

// Logger records admin actions without ever surfacing storage errors.
type Logger struct {
	repo Repository
	log  *logging.Logger
}

// NewLogger constructs the audit logger.
func NewLogger(repo Repository, log *logging.Logger) *Logger {
	if log == nil {
		log = logging.Default()
	}
	return &Logger{repo: repo, log: log}
}

// Record appends an entry. Failures are logged and swallowed.
func (l *Logger) Record(ctx context.Context, userID int64, userEmail, action, entityType, entityID, details string) {
	if l == nil || l.repo == nil {
		return
	}
	e := &Entry{
		UserID:     userID,
		UserEmail:  userEmail,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := l.repo.Append(ctx, e); err != nil {
		l.log.Warn("audit append failed", "action", action, "error", err)
	}
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []*Entry
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

// Append stores an entry in memory.
func (r *InMemoryRepository) Append(ctx context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	cp.ID = r.nextID
	cp.CreatedAt = time.Now().UTC()
	r.nextID++
	r.rows = append(r.rows, &cp)
	return nil
}

// List returns the newest entries first.
func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Entry, 0, len(r.rows))
	for _, e := range r.rows {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the activity trail in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("audit: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Append inserts one activity row.
func (r *PostgresRepository) Append(ctx context.Context, e *Entry) error {
	var userID any
	if e.UserID != 0 {
		userID = e.UserID
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_log (user_id, user_email, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, userID, e.UserEmail, e.Action, e.EntityType, e.EntityID, e.Details)
	if err != nil {
		return fmt.Errorf("audit: insert failed: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, coalesce(user_id, 0), user_email, action, entity_type, entity_id, details, created_at
		FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("audit: scan failed: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: rows failed: %w", err)
	}
	return out, nil
}
