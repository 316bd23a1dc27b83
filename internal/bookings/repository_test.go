package bookings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndStatusTransitions(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	b, err := repo.Create(ctx, &CreateRequest{
		ClientID:    1,
		ServiceName: "Маникюр",
		Date:        "2026-09-01",
		Time:        "14:00",
		ClientName:  "Anna",
		ClientPhone: "+380501234567",
		Revenue:     450,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Nil(t, b.CompletedAt)

	done, err := repo.SetStatus(ctx, b.ID, StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt, "completed must stamp completed_at")

	back, err := repo.SetStatus(ctx, b.ID, StatusPending)
	require.NoError(t, err)
	assert.Nil(t, back.CompletedAt, "leaving completed clears the stamp")
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.Create(ctx, &CreateRequest{ServiceName: "x"})
	assert.ErrorIs(t, err, ErrMissingClient)

	_, err = repo.Create(ctx, &CreateRequest{ClientID: 1, ServiceName: "  "})
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	b1, _ := repo.Create(ctx, &CreateRequest{ClientID: 1, ServiceName: "a"})
	b2, _ := repo.Create(ctx, &CreateRequest{ClientID: 2, ServiceName: "b"})
	_, err := repo.SetStatus(ctx, b2.ID, StatusCompleted)
	require.NoError(t, err)

	mine, err := repo.List(ctx, ListFilter{ClientID: 1})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, b1.ID, mine[0].ID)

	completed, err := repo.List(ctx, ListFilter{Status: StatusCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, b2.ID, completed[0].ID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	b, _ := repo.Create(ctx, &CreateRequest{ClientID: 1, ServiceName: "a"})
	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrBookingNotFound)
}

func TestDraftLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryDraftRepository()

	_, err := repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	require.NoError(t, repo.Save(ctx, &Draft{ClientID: 1, ServiceName: "Маникюр", Step: "date"}))
	require.NoError(t, repo.Save(ctx, &Draft{ClientID: 1, ServiceName: "Педикюр", Step: "time"}))

	d, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Педикюр", d.ServiceName, "save overwrites wholesale")
	assert.Empty(t, d.Date, "fields absent from the save are cleared")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "one draft per client")

	require.NoError(t, repo.Delete(ctx, 1))
	_, err = repo.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestDraftIsComplete(t *testing.T) {
	d := &Draft{ClientID: 1, ServiceName: "s", Date: "d", Time: "t", ClientName: "n", ClientPhone: "p"}
	assert.True(t, d.IsComplete())

	d.ClientPhone = ""
	assert.False(t, d.IsComplete())

	var nilDraft *Draft
	assert.False(t, nilDraft.IsComplete())
}
