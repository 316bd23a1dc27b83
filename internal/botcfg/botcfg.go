// Package botcfg reads and writes the single bot_settings row: the
// kill switch for automated replies and an optional prompt override.
package botcfg

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Settings is the singleton bot configuration.
type Settings struct {
	IsEnabled    bool      `json:"is_enabled"`
	SystemPrompt string    `json:"system_prompt"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store defines the interface for bot settings storage
type Store interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// InMemoryStore is a stub implementation of Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	settings Settings
}

// NewInMemoryStore creates a store with the bot enabled.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{settings: Settings{IsEnabled: true}}
}

// Get returns the current settings.
func (s *InMemoryStore) Get(ctx context.Context) (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := s.settings
	return &cp, nil
}

// Save overwrites the settings.
func (s *InMemoryStore) Save(ctx context.Context, settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = *settings
	s.settings.UpdatedAt = time.Now().UTC()
	return nil
}

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists the singleton row.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("botcfg: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Get returns the current settings. A missing row reads as enabled.
func (s *PostgresStore) Get(ctx context.Context) (*Settings, error) {
	var out Settings
	err := s.pool.QueryRow(ctx, `
		SELECT is_enabled, system_prompt, updated_at FROM bot_settings WHERE id = 1
	`).Scan(&out.IsEnabled, &out.SystemPrompt, &out.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &Settings{IsEnabled: true}, nil
		}
		return nil, fmt.Errorf("botcfg: select failed: %w", err)
	}
	return &out, nil
}

// Save upserts the singleton row.
func (s *PostgresStore) Save(ctx context.Context, settings *Settings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bot_settings (id, is_enabled, system_prompt, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET is_enabled = EXCLUDED.is_enabled,
		    system_prompt = EXCLUDED.system_prompt,
		    updated_at = now()
	`, settings.IsEnabled, settings.SystemPrompt)
	if err != nil {
		return fmt.Errorf("botcfg: upsert failed: %w", err)
	}
	return nil
}
