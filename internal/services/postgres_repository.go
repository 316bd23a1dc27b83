package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool the repository needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the catalog in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("services: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const serviceColumns = `id, service_key, name, name_en, category, price, currency,
		description, description_en, benefits, is_active, created_at`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(
		&s.ID, &s.Key, &s.Name, &s.NameEN, &s.Category, &s.Price, &s.Currency,
		&s.Description, &s.DescriptionEN, &s.Benefits, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a catalog entry.
func (r *PostgresRepository) Create(ctx context.Context, req *UpsertRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO services (service_key, name, name_en, category, price, currency,
			description, description_en, benefits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + serviceColumns + `
	`
	s, err := scanService(r.pool.QueryRow(ctx, query,
		req.Key, req.Name, req.NameEN, req.Category, req.Price, req.Currency,
		req.Description, req.DescriptionEN, req.Benefits,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("services: insert failed: %w", err)
	}
	return s, nil
}

// GetByID fetches one catalog entry.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Service, error) {
	s, err := scanService(r.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("services: select failed: %w", err)
	}
	return s, nil
}

// List returns the catalog ordered by category then name.
func (r *PostgresRepository) List(ctx context.Context, activeOnly bool) ([]*Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += " WHERE is_active"
	}
	query += " ORDER BY category, name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("services: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(
			&s.ID, &s.Key, &s.Name, &s.NameEN, &s.Category, &s.Price, &s.Currency,
			&s.Description, &s.DescriptionEN, &s.Benefits, &s.IsActive, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("services: scan failed: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("services: rows failed: %w", err)
	}
	return out, nil
}

// Update rewrites the editable fields.
func (r *PostgresRepository) Update(ctx context.Context, id int64, req *UpsertRequest) (*Service, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		UPDATE services
		SET service_key = $2, name = $3, name_en = $4, category = $5, price = $6,
		    currency = $7, description = $8, description_en = $9, benefits = $10
		WHERE id = $1
		RETURNING ` + serviceColumns + `
	`
	s, err := scanService(r.pool.QueryRow(ctx, query, id,
		req.Key, req.Name, req.NameEN, req.Category, req.Price, req.Currency,
		req.Description, req.DescriptionEN, req.Benefits,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("services: update failed: %w", err)
	}
	return s, nil
}

// SetActive soft-deletes or restores the entry.
func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE services SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("services: set active failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrServiceNotFound
	}
	return nil
}
