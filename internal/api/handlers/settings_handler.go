package handlers

import (
	"net/http"
	"sort"
	"strings"

	"portal/internal/api/middleware"
	"portal/internal/engine/webhooks"
	"portal/internal/pkg/errors"
	"portal/internal/platform/audit"
	"portal/internal/platform/repositories"
)

const maxSettingKey = 64

// SettingsHandler serves global site settings. Webhook keys live in the same
// table but are only reachable through IntegrationHandler.
type SettingsHandler struct {
	settings *repositories.SettingsRepository
	audit    *audit.Logger
}

func NewSettingsHandler(settings *repositories.SettingsRepository, auditLogger *audit.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, audit: auditLogger}
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.settings.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load settings", nil)
		return
	}

	out := make(map[string]string, len(rows))
	for _, s := range rows {
		if webhooks.IsChannelSettingKey(s.Key) {
			continue
		}
		out[s.Key] = s.Value
	}
	writeJSON(w, http.StatusOK, out)
}

// Update upserts each key of the body in turn.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	keys := make([]string, 0, len(req))
	for key := range req {
		if strings.TrimSpace(key) == "" || len(key) > maxSettingKey {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid setting key", key)
			return
		}
		if webhooks.IsChannelSettingKey(key) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Webhook destinations are managed through integrations", key)
			return
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := h.settings.Upsert(r.Context(), key, req[key]); err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save settings", key)
			return
		}
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionSettingsUpdated, "settings", "",
		map[string]interface{}{"keys": keys})
	h.List(w, r)
}
