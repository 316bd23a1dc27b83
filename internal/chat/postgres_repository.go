package chat

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

// PostgresRepository stores chat history in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("chat: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Append inserts a new history row. Bot rows are created already read.
func (r *PostgresRepository) Append(ctx context.Context, req *AppendRequest) (*Message, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO chat_history (client_id, sender, message, message_type, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	m := &Message{
		ClientID: req.ClientID,
		Sender:   req.Sender,
		Message:  req.Message,
		Type:     req.Type,
		IsRead:   req.Sender == SenderBot,
	}
	if err := r.pool.QueryRow(ctx, query,
		m.ClientID, m.Sender, m.Message, m.Type, m.IsRead,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return nil, fmt.Errorf("chat: insert failed: %w", err)
	}
	return m, nil
}

// History returns the newest limit rows for the client, oldest first.
func (r *PostgresRepository) History(ctx context.Context, clientID int64, limit int) ([]*Message, error) {
	query := `
		SELECT id, client_id, sender, message, message_type, is_read, created_at
		FROM (
			SELECT id, client_id, sender, message, message_type, is_read, created_at
			FROM chat_history
			WHERE client_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: history failed: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ClientID, &m.Sender, &m.Message, &m.Type, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chat: scan failed: %w", err)
		}
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: rows failed: %w", err)
	}
	return out, nil
}

// MarkRead flips every unread client-sent row, read flag only moves
// unread to read.
func (r *PostgresRepository) MarkRead(ctx context.Context, clientID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_history
		SET is_read = TRUE
		WHERE client_id = $1 AND sender = 'client' AND NOT is_read
	`, clientID)
	if err != nil {
		return 0, fmt.Errorf("chat: mark read failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UnreadCount counts unread client-sent rows.
func (r *PostgresRepository) UnreadCount(ctx context.Context, clientID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM chat_history
		WHERE client_id = $1 AND sender = 'client' AND NOT is_read
	`, clientID).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("chat: unread count failed: %w", err)
	}
	return n, nil
}

// Delete removes one local row. The messaging provider is never called.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("chat: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
