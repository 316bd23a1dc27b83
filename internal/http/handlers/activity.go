package handlers

import (
	"net/http"
	"strconv"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// ActivityHandler serves the recent admin activity trail.
type ActivityHandler struct {
	repo   audit.Repository
	logger *logging.Logger
}

// NewActivityHandler creates the activity handler.
func NewActivityHandler(repo audit.Repository, logger *logging.Logger) *ActivityHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ActivityHandler{repo: repo, logger: logger}
}

// List returns the newest activity entries, default 50.
// GET /admin/api/activity
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	entries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list activity failed", "error", err)
		jsonError(w, "could not list activity", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"activity": entries,
		"total":    len(entries),
	})
}
