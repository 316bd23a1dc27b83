package chat

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAppendBotRowIsRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO chat_history").
		WithArgs(int64(3), SenderBot, "Здравствуйте!", TypeText, true).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(10), time.Now()))

	repo := NewPostgresRepository(mock)
	m, err := repo.Append(context.Background(), &AppendRequest{
		ClientID: 3, Sender: SenderBot, Message: "Здравствуйте!",
	})
	require.NoError(t, err)
	assert.True(t, m.IsRead)
	assert.Equal(t, int64(10), m.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE chat_history").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))

	repo := NewPostgresRepository(mock)
	n, err := repo.MarkRead(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestPostgresDeleteNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM chat_history").
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewPostgresRepository(mock)
	assert.ErrorIs(t, repo.Delete(context.Background(), 99), ErrMessageNotFound)
}
