package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendDefaultsAndReadFlags(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	in, err := repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient, Message: "Привет"})
	require.NoError(t, err)
	assert.Equal(t, TypeText, in.Type)
	assert.False(t, in.IsRead, "client rows start unread")

	out, err := repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderBot, Message: "Здравствуйте!"})
	require.NoError(t, err)
	assert.True(t, out.IsRead, "bot rows are created read")
}

func TestAppendValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Append(ctx, &AppendRequest{Sender: SenderClient, Message: "x"})
	assert.ErrorIs(t, err, ErrMissingClient)

	_, err = repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: "manager", Message: "x"})
	assert.ErrorIs(t, err, ErrInvalidSender)

	_, err = repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHistoryReturnsLastNOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	bodies := []string{"one", "two", "three", "four", "five"}
	for _, b := range bodies {
		_, err := repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient, Message: b})
		require.NoError(t, err)
	}

	got, err := repo.History(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "three", got[0].Message)
	assert.Equal(t, "five", got[2].Message)
}

func TestMarkReadScopedToClient(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, _ = repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient, Message: "a"})
	_, _ = repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient, Message: "b"})
	_, _ = repo.Append(ctx, &AppendRequest{ClientID: 2, Sender: SenderClient, Message: "c"})

	n, err := repo.MarkRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	unread1, _ := repo.UnreadCount(ctx, 1)
	unread2, _ := repo.UnreadCount(ctx, 2)
	assert.Equal(t, 0, unread1)
	assert.Equal(t, 1, unread2, "other clients' unread counts stay put")
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	m, _ := repo.Append(ctx, &AppendRequest{ClientID: 1, Sender: SenderClient, Message: "gone soon"})
	require.NoError(t, repo.Delete(ctx, m.ID))
	assert.ErrorIs(t, repo.Delete(ctx, m.ID), ErrMessageNotFound)
}
