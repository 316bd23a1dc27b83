package handlers

import (
	"net/http"

	"github.com/mlediamant/salon-crm/internal/audit"
	"github.com/mlediamant/salon-crm/internal/botcfg"
	"github.com/mlediamant/salon-crm/internal/http/middleware"
	"github.com/mlediamant/salon-crm/pkg/logging"
)

// BotSettingsHandler serves the bot kill switch and prompt override.
type BotSettingsHandler struct {
	store  botcfg.Store
	audit  *audit.Logger
	logger *logging.Logger
}

// NewBotSettingsHandler creates the bot settings handler.
func NewBotSettingsHandler(store botcfg.Store, auditLog *audit.Logger, logger *logging.Logger) *BotSettingsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BotSettingsHandler{store: store, audit: auditLog, logger: logger}
}

// Get returns the current settings.
// GET /admin/api/bot-settings
func (h *BotSettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Get(r.Context())
	if err != nil {
		h.logger.Error("load bot settings failed", "error", err)
		jsonError(w, "could not load bot settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Save overwrites the settings.
// POST /admin/api/bot-settings
func (h *BotSettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var settings botcfg.Settings
	if err := decodeBody(r, &settings); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.Save(r.Context(), &settings); err != nil {
		h.logger.Error("save bot settings failed", "error", err)
		respondFailure(w, http.StatusInternalServerError, "Could not save bot settings")
		return
	}

	state := "disabled"
	if settings.IsEnabled {
		state = "enabled"
	}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		h.audit.Record(r.Context(), user.ID, user.Email, "bot_settings", "bot", "", "Bot "+state)
	}
	respondSuccess(w, "Bot settings saved")
}
