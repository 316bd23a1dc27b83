package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
)

func seedBooking(t *testing.T, repo bookings.Repository) *bookings.Booking {
	t.Helper()
	b, err := repo.Create(context.Background(), &bookings.CreateRequest{
		ClientID:    1,
		ServiceName: "Manicure",
		Date:        "2026-09-01",
		Time:        "14:00",
		ClientName:  "Anna",
		ClientPhone: "+971500000001",
		Revenue:     150,
	})
	require.NoError(t, err)
	return b
}

func TestBookingsCreateValidates(t *testing.T) {
	repo := bookings.NewInMemoryRepository()
	h := NewBookingsHandler(repo, clients.NewInMemoryRepository(), mustAudit(t), nil)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/bookings/create", bookings.CreateRequest{ClientID: 1}, adminUser())
	h.Create(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r = authedRequest(t, http.MethodPost, "/admin/api/bookings/create", bookings.CreateRequest{
		ClientID:    1,
		ServiceName: "Manicure",
	}, adminUser())
	h.Create(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeMap(t, rec)["success"])
}

func TestBookingsCreatePromotesClientToLead(t *testing.T) {
	repo := bookings.NewInMemoryRepository()
	clientRepo := clients.NewInMemoryRepository()
	h := NewBookingsHandler(repo, clientRepo, mustAudit(t), nil)

	c, _, err := clientRepo.GetOrCreate(context.Background(), "ig_anna", "")
	require.NoError(t, err)
	require.Equal(t, "new", c.Status)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/bookings/create", bookings.CreateRequest{
		ClientID:    c.ID,
		ServiceName: "Manicure",
		Date:        "2026-09-01",
		Time:        "14:00",
		ClientName:  "Anna",
		ClientPhone: "+971500000001",
	}, adminUser())
	h.Create(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := clientRepo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "lead", updated.Status)
	assert.Equal(t, "Anna", updated.Name)
	assert.Equal(t, "+971500000001", updated.Phone)
}

func TestBookingsCompleteStampsCompletedAt(t *testing.T) {
	repo := bookings.NewInMemoryRepository()
	h := NewBookingsHandler(repo, clients.NewInMemoryRepository(), mustAudit(t), nil)
	b := seedBooking(t, repo)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/bookings/1/status", bookingStatusRequest{Status: bookings.StatusCompleted}, adminUser(), "bookingID", "1")
	h.SetStatus(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, bookings.StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)
}

func TestBookingsNotesKeepOtherFields(t *testing.T) {
	repo := bookings.NewInMemoryRepository()
	h := NewBookingsHandler(repo, clients.NewInMemoryRepository(), mustAudit(t), nil)
	b := seedBooking(t, repo)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/bookings/1/notes", bookingNotesRequest{Notes: "allergic to acetone"}, adminUser(), "bookingID", "1")
	h.SetNotes(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "allergic to acetone", updated.Notes)
	assert.Equal(t, "Manicure", updated.ServiceName)
	assert.Equal(t, 150.0, updated.Revenue)
}

func TestBookingsDeleteUnknownIs404(t *testing.T) {
	h := NewBookingsHandler(bookings.NewInMemoryRepository(), clients.NewInMemoryRepository(), mustAudit(t), nil)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/admin/api/bookings/42/delete", nil, adminUser(), "bookingID", "42")
	h.Delete(rec, r)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingsListFiltersByStatus(t *testing.T) {
	repo := bookings.NewInMemoryRepository()
	h := NewBookingsHandler(repo, clients.NewInMemoryRepository(), mustAudit(t), nil)
	seedBooking(t, repo)
	b := seedBooking(t, repo)
	_, err := repo.SetStatus(context.Background(), b.ID, bookings.StatusCompleted)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r := authedRequest(t, http.MethodGet, "/admin/api/bookings?status=completed", nil, adminUser())
	h.List(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeMap(t, rec)["total"])
}
