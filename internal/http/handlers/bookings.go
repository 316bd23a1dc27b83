package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/bookings"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// BookingsHandler serves the admin booking endpoints.
type BookingsHandler struct {
	repo    bookings.Repository
	clients clients.Repository
	audit   *audit.Logger
	logger  *logging.Logger
}

// NewBookingsHandler creates the bookings handler.
func NewBookingsHandler(repo bookings.Repository, clientRepo clients.Repository, auditLog *audit.Logger, logger *logging.Logger) *BookingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{repo: repo, clients: clientRepo, audit: auditLog, logger: logger}
}

// List returns bookings, optionally filtered by client and status.
// GET /admin/api/bookings
func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	clientID, _ := strconv.ParseInt(q.Get("client_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))

	rows, err := h.repo.List(r.Context(), bookings.ListFilter{
		ClientID: clientID,
		Status:   q.Get("status"),
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list bookings failed", "error", err)
		jsonError(w, "could not list bookings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": rows,
		"total":    len(rows),
	})
}

// Create records a booking entered by an operator.
// POST /admin/api/bookings/create
func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookings.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	booking, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, bookings.ErrMissingClient), errors.Is(err, bookings.ErrMissingService):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("create booking failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not create booking")
		return
	}

	// A booking moves the client into the lead stage and snapshots the
	// contact details captured during the booking.
	if err := h.clients.MarkLead(r.Context(), booking.ClientID, booking.ClientName, booking.ClientPhone); err != nil {
		h.logger.Warn("promote client to lead failed", "client_id", booking.ClientID, "error", err)
	}

	h.record(r, "create_booking", booking.ID, "Booked "+booking.ServiceName)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Booking created",
		"booking": booking,
	})
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves a booking through its lifecycle. Completing a
// booking stamps completed_at.
// POST /admin/api/bookings/{bookingID}/status
func (h *BookingsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req bookingStatusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		respondFailure(w, http.StatusBadRequest, "status is required")
		return
	}

	booking, err := h.repo.SetStatus(r.Context(), id, req.Status)
	if errors.Is(err, bookings.ErrBookingNotFound) {
		respondFailure(w, http.StatusNotFound, "Booking not found")
		return
	}
	if err != nil {
		h.logger.Error("set booking status failed", "booking_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not change status")
		return
	}

	h.record(r, "booking_status", id, "Status set to "+booking.Status)
	respondSuccess(w, "Status updated")
}

type bookingNotesRequest struct {
	Notes string `json:"notes"`
}

// SetNotes replaces the booking notes only.
// POST /admin/api/bookings/{bookingID}/notes
func (h *BookingsHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req bookingNotesRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, bookings.ErrBookingNotFound) {
		respondFailure(w, http.StatusNotFound, "Booking not found")
		return
	}
	if err != nil {
		h.logger.Error("load booking failed", "booking_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not save notes")
		return
	}

	update := bookings.CreateRequest{
		ClientID:    current.ClientID,
		ServiceName: current.ServiceName,
		Date:        current.Date,
		Time:        current.Time,
		ClientName:  current.ClientName,
		ClientPhone: current.ClientPhone,
		Revenue:     current.Revenue,
		Notes:       req.Notes,
	}
	if _, err := h.repo.Update(r.Context(), id, &update); err != nil {
		h.logger.Error("save booking notes failed", "booking_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not save notes")
		return
	}

	h.record(r, "booking_notes", id, "Notes updated")
	respondSuccess(w, "Notes saved")
}

// Update replaces the editable booking fields.
// POST /admin/api/bookings/{bookingID}/update
func (h *BookingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid booking id")
		return
	}
	var req bookings.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err = h.repo.Update(r.Context(), id, &req)
	switch {
	case errors.Is(err, bookings.ErrBookingNotFound):
		respondFailure(w, http.StatusNotFound, "Booking not found")
		return
	case errors.Is(err, bookings.ErrMissingClient), errors.Is(err, bookings.ErrMissingService):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("update booking failed", "booking_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not update booking")
		return
	}

	h.record(r, "update_booking", id, "Booking updated")
	respondSuccess(w, "Booking updated")
}

// Delete removes a booking.
// POST /admin/api/bookings/{bookingID}/delete
func (h *BookingsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookingID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, bookings.ErrBookingNotFound) {
			respondFailure(w, http.StatusNotFound, "Booking not found")
			return
		}
		h.logger.Error("delete booking failed", "booking_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete booking")
		return
	}

	h.record(r, "delete_booking", id, "Booking deleted")
	respondSuccess(w, "Booking deleted")
}

func (h *BookingsHandler) record(r *http.Request, action string, bookingID int64, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "booking", strconv.FormatInt(bookingID, 10), details)
}
