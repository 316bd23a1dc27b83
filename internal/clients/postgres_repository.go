package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores clients in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("clients: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const clientColumns = `id, instagram_id, name, username, phone, status, labels, notes,
		total_messages, lifetime_value, is_pinned, first_contact, last_contact`

// GetOrCreate upserts by Instagram ID and bumps the contact counter.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, instagramID, name string) (*Client, bool, error) {
	if instagramID == "" {
		return nil, false, ErrMissingInstagramID
	}

	query := `
		INSERT INTO clients (instagram_id, name, total_messages)
		VALUES ($1, $2, 1)
		ON CONFLICT (instagram_id) DO UPDATE
		SET total_messages = clients.total_messages + 1,
		    last_contact = now()
		RETURNING ` + clientColumns + `, (xmax = 0) AS inserted
	`
	var c Client
	var inserted bool
	if err := r.pool.QueryRow(ctx, query, instagramID, name).Scan(
		&c.ID, &c.InstagramID, &c.Name, &c.Username, &c.Phone, &c.Status,
		&c.Labels, &c.Notes, &c.TotalMessages, &c.LifetimeValue, &c.IsPinned,
		&c.FirstContact, &c.LastContact, &inserted,
	); err != nil {
		return nil, false, fmt.Errorf("clients: upsert failed: %w", err)
	}
	return &c, inserted, nil
}

// GetByID fetches a single client row.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
}

// GetByInstagramID fetches a client by the external messaging ID.
func (r *PostgresRepository) GetByInstagramID(ctx context.Context, instagramID string) (*Client, error) {
	return r.getOne(ctx, `SELECT `+clientColumns+` FROM clients WHERE instagram_id = $1`, instagramID)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*Client, error) {
	var c Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&c.ID, &c.InstagramID, &c.Name, &c.Username, &c.Phone, &c.Status,
		&c.Labels, &c.Notes, &c.TotalMessages, &c.LifetimeValue, &c.IsPinned,
		&c.FirstContact, &c.LastContact,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("clients: select failed: %w", err)
	}
	return &c, nil
}

// List returns clients matching the filter, pinned first, newest contact next.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Client, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(lower(name) LIKE $%d OR lower(phone) LIKE $%d OR lower(instagram_id) LIKE $%d)", n, n, n))
	}

	query := `SELECT ` + clientColumns + ` FROM clients`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY is_pinned DESC, last_contact DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clients: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(
			&c.ID, &c.InstagramID, &c.Name, &c.Username, &c.Phone, &c.Status,
			&c.Labels, &c.Notes, &c.TotalMessages, &c.LifetimeValue, &c.IsPinned,
			&c.FirstContact, &c.LastContact,
		); err != nil {
			return nil, fmt.Errorf("clients: scan failed: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("clients: rows failed: %w", err)
	}
	return out, nil
}

// Update applies admin-editable fields and returns the fresh row.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpdateRequest) (*Client, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE clients
		SET name = $2, phone = $3, status = $4, labels = $5, notes = $6,
		    lifetime_value = $7, is_pinned = $8
		WHERE id = $1
		RETURNING ` + clientColumns + `
	`
	var c Client
	if err := r.pool.QueryRow(ctx, query, id,
		req.Name, req.Phone, req.Status, req.Labels, req.Notes,
		req.LifetimeValue, req.IsPinned,
	).Scan(
		&c.ID, &c.InstagramID, &c.Name, &c.Username, &c.Phone, &c.Status,
		&c.Labels, &c.Notes, &c.TotalMessages, &c.LifetimeValue, &c.IsPinned,
		&c.FirstContact, &c.LastContact,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("clients: update failed: %w", err)
	}
	return &c, nil
}

// MarkLead promotes the client to the lead stage and snapshots the
// contact details captured on the booking. Empty values leave the
// stored name and phone untouched.
func (r *PostgresRepository) MarkLead(ctx context.Context, id int64, name, phone string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients
		SET status = 'lead',
		    name = COALESCE(NULLIF($2, ''), name),
		    phone = COALESCE(NULLIF($3, ''), phone)
		WHERE id = $1
	`, id, name, phone)
	if err != nil {
		return fmt.Errorf("clients: mark lead failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}

// SetStatus updates only the funnel status.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status string) error {
	if strings.TrimSpace(status) == "" {
		return ErrInvalidStatus
	}
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("clients: set status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrClientNotFound
	}
	return nil
}
