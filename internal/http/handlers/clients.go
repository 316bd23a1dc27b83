package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/clients"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// ClientsHandler serves the admin client endpoints.
type ClientsHandler struct {
	repo   clients.Repository
	audit  *audit.Logger
	logger *logging.Logger
}

// NewClientsHandler creates the clients handler.
func NewClientsHandler(repo clients.Repository, auditLog *audit.Logger, logger *logging.Logger) *ClientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ClientsHandler{repo: repo, audit: auditLog, logger: logger}
}

// List returns clients, optionally filtered by status and search text.
// GET /admin/api/clients
func (h *ClientsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	rows, err := h.repo.List(r.Context(), clients.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.Error("list clients failed", "error", err)
		jsonError(w, "could not list clients", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clients": rows,
		"total":   len(rows),
	})
}

// Get returns one client.
// GET /admin/api/clients/{clientID}
func (h *ClientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		jsonError(w, "invalid client id", http.StatusBadRequest)
		return
	}
	client, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, clients.ErrClientNotFound) {
		jsonError(w, "client not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get client failed", "client_id", id, "error", err)
		jsonError(w, "could not load client", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// Update applies the full editable field set.
// POST /admin/api/client/{clientID}/update
func (h *ClientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req clients.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.repo.Update(r.Context(), id, &req)
	switch {
	case errors.Is(err, clients.ErrClientNotFound):
		respondFailure(w, http.StatusNotFound, "Client not found")
		return
	case errors.Is(err, clients.ErrInvalidStatus):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("update client failed", "client_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not update client")
		return
	}

	h.record(r, "update_client", client.InstagramID, "Updated client card")
	respondSuccess(w, "Client updated")
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus moves a client across the funnel.
// POST /admin/api/client/{clientID}/status
func (h *ClientsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req setStatusRequest
	if err := decodeBody(r, &req); err != nil || req.Status == "" {
		respondFailure(w, http.StatusBadRequest, "status is required")
		return
	}

	if err := h.repo.SetStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			respondFailure(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.Error("set client status failed", "client_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not change status")
		return
	}

	h.record(r, "change_status", strconv.FormatInt(id, 10), "Status set to "+req.Status)
	respondSuccess(w, "Status updated")
}

type setNotesRequest struct {
	Notes string `json:"notes"`
}

// SetNotes replaces the free-form notes only.
// POST /admin/api/client/{clientID}/notes
func (h *ClientsHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid client id")
		return
	}
	var req setNotesRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client, err := h.patch(r, id, func(u *clients.UpdateRequest) {
		u.Notes = req.Notes
	})
	if err != nil {
		h.patchError(w, id, err, "Could not save notes")
		return
	}

	h.record(r, "update_notes", client.InstagramID, "Notes updated")
	respondSuccess(w, "Notes saved")
}

// TogglePin flips the pinned flag.
// POST /admin/api/client/{clientID}/pin
func (h *ClientsHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "clientID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var pinned bool
	client, err := h.patch(r, id, func(u *clients.UpdateRequest) {
		u.IsPinned = !u.IsPinned
		pinned = u.IsPinned
	})
	if err != nil {
		h.patchError(w, id, err, "Could not pin client")
		return
	}

	action := "Unpinned"
	if pinned {
		action = "Pinned"
	}
	h.record(r, "toggle_pin", client.InstagramID, action+" chat")
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   action,
		"is_pinned": pinned,
	})
}

// patch loads the client, lets fn adjust its editable fields, and
// writes the result back as a full update.
func (h *ClientsHandler) patch(r *http.Request, id int64, fn func(*clients.UpdateRequest)) (*clients.Client, error) {
	current, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	req := clients.UpdateRequest{
		Name:          current.Name,
		Phone:         current.Phone,
		Status:        current.Status,
		Labels:        current.Labels,
		Notes:         current.Notes,
		LifetimeValue: current.LifetimeValue,
		IsPinned:      current.IsPinned,
	}
	fn(&req)
	return h.repo.Update(r.Context(), id, &req)
}

func (h *ClientsHandler) patchError(w http.ResponseWriter, id int64, err error, fallback string) {
	if errors.Is(err, clients.ErrClientNotFound) {
		respondFailure(w, http.StatusNotFound, "Client not found")
		return
	}
	h.logger.Error("client update failed", "client_id", id, "error", err)
	respondFailure(w, http.StatusInternalServerError, fallback)
}

func (h *ClientsHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "client", entityID, details)
}
