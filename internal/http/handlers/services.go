package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/services"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// ServicesHandler serves the service catalog endpoints.
type ServicesHandler struct {
	repo   services.Repository
	audit  *audit.Logger
	logger *logging.Logger
}

// NewServicesHandler creates the services handler.
func NewServicesHandler(repo services.Repository, auditLog *audit.Logger, logger *logging.Logger) *ServicesHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ServicesHandler{repo: repo, audit: auditLog, logger: logger}
}

// List returns catalog entries. ?active=true hides deactivated rows.
// GET /admin/api/services
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	rows, err := h.repo.List(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list services failed", "error", err)
		jsonError(w, "could not list services", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"services": rows,
		"total":    len(rows),
	})
}

// Create adds a catalog entry.
// POST /admin/api/services/create
func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.UpsertRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.repo.Create(r.Context(), &req)
	switch {
	case errors.Is(err, services.ErrDuplicateKey):
		respondFailure(w, http.StatusConflict, "A service with this key already exists")
		return
	case errors.Is(err, services.ErrMissingKey), errors.Is(err, services.ErrMissingName), errors.Is(err, services.ErrNegativePrice):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("create service failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not create service")
		return
	}

	h.record(r, "create_service", svc.Key, "Created service "+svc.Name)
	respondSuccess(w, "Service created")
}

// Update replaces the editable catalog fields.
// POST /admin/api/services/{serviceID}/update
func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "serviceID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid service id")
		return
	}
	var req services.UpsertRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.repo.Update(r.Context(), id, &req)
	switch {
	case errors.Is(err, services.ErrServiceNotFound):
		respondFailure(w, http.StatusNotFound, "Service not found")
		return
	case errors.Is(err, services.ErrMissingKey), errors.Is(err, services.ErrMissingName), errors.Is(err, services.ErrNegativePrice):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("update service failed", "service_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not update service")
		return
	}

	h.record(r, "update_service", svc.Key, "Updated service "+svc.Name)
	respondSuccess(w, "Service updated")
}

// Delete deactivates an entry. The row survives so past bookings keep
// their history.
// POST /admin/api/services/{serviceID}/delete
func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "serviceID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid service id")
		return
	}

	if err := h.repo.SetActive(r.Context(), id, false); err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			respondFailure(w, http.StatusNotFound, "Service not found")
			return
		}
		h.logger.Error("deactivate service failed", "service_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete service")
		return
	}

	h.record(r, "delete_service", strconv.FormatInt(id, 10), "Service deactivated")
	respondSuccess(w, "Service deleted")
}

func (h *ServicesHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "service", entityID, details)
}
