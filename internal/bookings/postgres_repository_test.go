package bookings

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingRow(id int64, status string, completedAt *time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "client_id", "service_name", "booking_date", "booking_time",
		"client_name", "client_phone", "status", "revenue", "notes", "created_at", "completed_at",
	}).AddRow(id, int64(1), "Маникюр", "2026-09-01", "14:00", "Anna", "+380501234567",
		status, 450.0, "", time.Now(), completedAt)
}

func TestPostgresCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(int64(1), "Маникюр", "2026-09-01", "14:00", "Anna", "+380501234567", 450.0, "").
		WillReturnRows(bookingRow(5, StatusPending, nil))

	repo := NewPostgresRepository(mock)
	b, err := repo.Create(context.Background(), &CreateRequest{
		ClientID: 1, ServiceName: "Маникюр", Date: "2026-09-01", Time: "14:00",
		ClientName: "Anna", ClientPhone: "+380501234567", Revenue: 450,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSetStatusCompleted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("UPDATE bookings").
		WithArgs(int64(5), StatusCompleted).
		WillReturnRows(bookingRow(5, StatusCompleted, &now))

	repo := NewPostgresRepository(mock)
	b, err := repo.SetStatus(context.Background(), 5, StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, b.CompletedAt)
}

func TestPostgresDraftSaveAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO booking_drafts").
		WithArgs(int64(1), "Маникюр", "", "", "", "", "date").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM booking_drafts").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewPostgresDraftRepository(mock)
	require.NoError(t, repo.Save(context.Background(), &Draft{ClientID: 1, ServiceName: "Маникюр", Step: "date"}))
	require.NoError(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
