package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repositories need.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const bookingColumns = `id, client_id, service_name, booking_date, booking_time,
		client_name, client_phone, status, revenue, notes, created_at, completed_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.ClientID, &b.ServiceName, &b.Date, &b.Time,
		&b.ClientName, &b.ClientPhone, &b.Status, &b.Revenue, &b.Notes,
		&b.CreatedAt, &b.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a pending booking.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO bookings (client_id, service_name, booking_date, booking_time,
			client_name, client_phone, revenue, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookingColumns + `
	`
	b, err := scanBooking(r.pool.QueryRow(ctx, query,
		req.ClientID, req.ServiceName, req.Date, req.Time,
		req.ClientName, req.ClientPhone, req.Revenue, req.Notes,
	))
	if err != nil {
		return nil, fmt.Errorf("bookings: insert failed: %w", err)
	}
	return b, nil
}

// GetByID fetches one booking.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: select failed: %w", err)
	}
	return b, nil
}

// List returns bookings newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Booking, error) {
	var (
		conds []string
		args  []any
	)
	if filter.ClientID != 0 {
		args = append(args, filter.ClientID)
		conds = append(conds, fmt.Sprintf("client_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
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
		return nil, fmt.Errorf("bookings: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.ClientID, &b.ServiceName, &b.Date, &b.Time,
			&b.ClientName, &b.ClientPhone, &b.Status, &b.Revenue, &b.Notes,
			&b.CreatedAt, &b.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("bookings: scan failed: %w", err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: rows failed: %w", err)
	}
	return out, nil
}

// SetStatus transitions the booking. Completed stamps completed_at.
func (r *PostgresRepository) SetStatus(ctx context.Context, id int64, status string) (*Booking, error) {
	query := `
		UPDATE bookings
		SET status = $2,
		    completed_at = CASE WHEN $2 = 'completed' THEN now() ELSE NULL END
		WHERE id = $1
		RETURNING ` + bookingColumns + `
	`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: set status failed: %w", err)
	}
	return b, nil
}

// Update rewrites the editable fields.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *CreateRequest) (*Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE bookings
		SET client_id = $2, service_name = $3, booking_date = $4, booking_time = $5,
		    client_name = $6, client_phone = $7, revenue = $8, notes = $9
		WHERE id = $1
		RETURNING ` + bookingColumns + `
	`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, id,
		req.ClientID, req.ServiceName, req.Date, req.Time,
		req.ClientName, req.ClientPhone, req.Revenue, req.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("bookings: update failed: %w", err)
	}
	return b, nil
}

// Delete removes a booking row.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bookings: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// PostgresDraftRepository stores the per-client scratchpad.
type PostgresDraftRepository struct {
	pool PgxPool
}

// NewPostgresDraftRepository initializes the draft repo.
func NewPostgresDraftRepository(pool PgxPool) *PostgresDraftRepository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &PostgresDraftRepository{pool: pool}
}

// Get returns the client's draft.
func (r *PostgresDraftRepository) Get(ctx context.Context, clientID int64) (*Draft, error) {
	var d Draft
	err := r.pool.QueryRow(ctx, `
		SELECT client_id, service_name, booking_date, booking_time,
		       client_name, client_phone, step, updated_at
		FROM booking_drafts WHERE client_id = $1
	`, clientID).Scan(
		&d.ClientID, &d.ServiceName, &d.Date, &d.Time,
		&d.ClientName, &d.ClientPhone, &d.Step, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("bookings: draft select failed: %w", err)
	}
	return &d, nil
}

// Save upserts the draft wholesale.
func (r *PostgresDraftRepository) Save(ctx context.Context, draft *Draft) error {
	if draft.ClientID == 0 {
		return ErrMissingClient
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_drafts (client_id, service_name, booking_date, booking_time,
			client_name, client_phone, step, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (client_id) DO UPDATE
		SET service_name = EXCLUDED.service_name,
		    booking_date = EXCLUDED.booking_date,
		    booking_time = EXCLUDED.booking_time,
		    client_name = EXCLUDED.client_name,
		    client_phone = EXCLUDED.client_phone,
		    step = EXCLUDED.step,
		    updated_at = now()
	`, draft.ClientID, draft.ServiceName, draft.Date, draft.Time,
		draft.ClientName, draft.ClientPhone, draft.Step)
	if err != nil {
		return fmt.Errorf("bookings: draft upsert failed: %w", err)
	}
	return nil
}

// Delete drops the draft. Missing rows are not an error.
func (r *PostgresDraftRepository) Delete(ctx context.Context, clientID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM booking_drafts WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("bookings: draft delete failed: %w", err)
	}
	return nil
}

// Count returns the number of open drafts.
func (r *PostgresDraftRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM booking_drafts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("bookings: draft count failed: %w", err)
	}
	return n, nil
}
