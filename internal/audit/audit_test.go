package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlediamant/salon-crm/pkg/logging"
)

type failingRepo struct{}

func (failingRepo) Append(context.Context, *Entry) error       { return errors.New("db down") }
func (failingRepo) List(context.Context, int) ([]*Entry, error) { return nil, errors.New("db down") }

func TestRecordAppends(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	l := NewLogger(repo, logging.Default())

	l.Record(ctx, 1, "admin@salon.local", "update_client", "client", "42", "status new->lead")

	entries, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "update_client", entries[0].Action)
	assert.Equal(t, "42", entries[0].EntityID)
}

func TestRecordSwallowsFailures(t *testing.T) {
	l := NewLogger(failingRepo{}, logging.Default())
	// Must not panic or propagate the storage error.
	l.Record(context.Background(), 1, "admin@salon.local", "delete_message", "message", "7", "")
}

func TestListNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	l := NewLogger(repo, logging.Default())

	l.Record(ctx, 1, "a@b.co", "first", "", "", "")
	l.Record(ctx, 1, "a@b.co", "second", "", "", "")
	l.Record(ctx, 1, "a@b.co", "third", "", "", "")

	entries, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Action)
}
