package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/internal/users"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// UsersHandler serves the account management endpoints. All of them
// require the admin role.
type UsersHandler struct {
	users  *users.Service
	audit  *audit.Logger
	logger *logging.Logger
}

// NewUsersHandler creates the users handler.
func NewUsersHandler(usersSvc *users.Service, auditLog *audit.Logger, logger *logging.Logger) *UsersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &UsersHandler{users: usersSvc, audit: auditLog, logger: logger}
}

// List returns all accounts.
// GET /admin/api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	rows, err := h.users.List(r.Context())
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		jsonError(w, "could not list users", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": rows,
		"total": len(rows),
	})
}

// Update changes the name, role or active flag of an account.
// POST /admin/api/users/{userID}/update
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r, "userID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req users.UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Update(r.Context(), id, &req)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		respondFailure(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, users.ErrInvalidRole):
		respondFailure(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error("update user failed", "user_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not update user")
		return
	}

	h.record(r, "update_user", user.Email, "Updated account "+user.Email)
	respondSuccess(w, "User updated")
}

// Delete removes an account. Self-deletion is rejected.
// POST /admin/api/users/{userID}/delete
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok || actor.Role != users.RoleAdmin {
		jsonError(w, "forbidden", http.StatusForbidden)
		return
	}
	id, err := pathID(r, "userID")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if id == actor.ID {
		respondFailure(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			respondFailure(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("delete user failed", "user_id", id, "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not delete user")
		return
	}

	h.record(r, "delete_user", strconv.FormatInt(id, 10), "Account deleted")
	respondSuccess(w, "User deleted")
}

func (h *UsersHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok || actor.Role != users.RoleAdmin {
		jsonError(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (h *UsersHandler) record(r *http.Request, action, entityID, details string) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return
	}
	h.audit.Record(r.Context(), user.ID, user.Email, action, "user", entityID, details)
}
