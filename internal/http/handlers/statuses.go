package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/statuses"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// StatusesHandler serves the funnel status endpoints.
type StatusesHandler struct {
	repo   statuses.Repository
	audit  *audit.Logger
	logger *logging.Logger
}

// NewStatusesHandler creates the statuses handler.
func NewStatusesHandler(repo statuses.Repository, auditLog *audit.Logger, logger *logging.Logger) *StatusesHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatusesHandler{repo: repo, audit: auditLog, logger: logger}
}

// List returns the base set merged with custom statuses.
// GET /admin/api/statuses
func (h *StatusesHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := statuses.All(r.Context(), h.repo)
	if err != nil {
		h.logger.Error("list statuses failed", "error", err)
		jsonError(w, "could not list statuses", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statuses": all,
		"total":    len(all),
	})
}

// Create adds a custom status.
// POST /admin/api/statuses/create
func (h *StatusesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req statuses.CreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, statuses.ErrDuplicateKey):
		respondFailure(w, http.StatusConflict, "A status with this key already exists")
		return
	case errors.Is(err, statuses.ErrReservedKey):
		respondFailure(w, http.StatusBadRequest, "This status key is reserved")
		return
	case errors.Is(err, statuses.ErrMissingKey), errors.Is(err, statuses.ErrMissingLabel):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("create status failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not create status")
		return
	}

	h.record(r, "create_status", status.Key, "Created status "+status.Label)
	respondSuccess(w, "Status created")
}

// Delete removes a custom status by key. Base statuses stay.
// POST /admin/api/statuses/{statusKey}/delete
func (h *StatusesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "statusKey")
	if key == "" {
		respondFailure(w, http.StatusBadRequest, "status key is required")
		return
	}
	if statuses.IsBase(key) {
		respondFailure(w, http.StatusBadRequest, "Base statuses cannot be deleted")
		return
	}

	custom, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list statuses failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete status")
		return
	}
	var target *statuses.Status
	for _, s := range custom {
		if s.Key == key {
			target = s
			break
		}
	}
	if target == nil {
		respondFailure(w, http.StatusNotFound, "Status not found")
		return
	}

	if err := h.repo.Delete(r.Context(), target.ID); err != nil {
		if errors.Is(err, statuses.ErrStatusNotFound) {
			respondFailure(w, http.StatusNotFound, "Status not found")
			return
		}
		h.logger.Error("delete status failed", "status_key", key, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete status")
		return
	}

	h.record(r, "delete_status", key, "Status deleted")
	respondSuccess(w, "Status deleted")
}

func (h *StatusesHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "status", entityID, details)
}
