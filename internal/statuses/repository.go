package statuses

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for custom status storage
type Repository interface {
	Create(ctx context.Context, req *CreateRequest) (*Status, error)
	// List returns custom statuses ordered by position.
	List(ctx context.Context) ([]*Status, error)
	Delete(ctx context.Context, id int64) error
}

// All merges the base set with the stored custom statuses.
func All(ctx context.Context, repo Repository) ([]*Status, error) {
	out := make([]*Status, 0, len(Base))
	for i := range Base {
		s := Base[i]
		out = append(out, &s)
	}
	custom, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return append(out, custom...), nil
}

// InMemoryRepository is a stub implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*Status
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1, rows: make(map[int64]*Status)}
}

// Create inserts a custom status.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateRequest) (*Status, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.rows {
		if s.Key == req.Key {
			return nil, ErrDuplicateKey
		}
	}
	s := &Status{
		ID:        r.nextID,
		Key:       req.Key,
		Label:     req.Label,
		Color:     req.Color,
		Icon:      req.Icon,
		Position:  req.Position,
		Custom:    true,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.rows[s.ID] = s
	cp := *s
	return &cp, nil
}

// List returns custom statuses ordered by position.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Status, 0, len(r.rows))
	for _, s := range r.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Delete removes a custom status.
func (r *InMemoryRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrStatusNotFound
	}
	delete(r.rows, id)
	return nil
}

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores custom statuses in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("statuses: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a custom status.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Status, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO custom_statuses (status_key, label, color, icon, position)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	s := &Status{
		Key:      req.Key,
		Label:    req.Label,
		Color:    req.Color,
		Icon:     req.Icon,
		Position: req.Position,
		Custom:   true,
	}
	if err := r.pool.QueryRow(ctx, query,
		s.Key, s.Label, s.Color, s.Icon, s.Position,
	).Scan(&s.ID, &s.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("statuses: insert failed: %w", err)
	}
	return s, nil
}

// List returns custom statuses ordered by position.
func (r *PostgresRepository) List(ctx context.Context) ([]*Status, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, status_key, label, color, icon, position, created_at
		FROM custom_statuses ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("statuses: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Status
	for rows.Next() {
		s := Status{Custom: true}
		if err := rows.Scan(&s.ID, &s.Key, &s.Label, &s.Color, &s.Icon, &s.Position, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("statuses: scan failed: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statuses: rows failed: %w", err)
	}
	return out, nil
}

// Delete removes a custom status.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM custom_statuses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("statuses: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStatusNotFound
	}
	return nil
}
