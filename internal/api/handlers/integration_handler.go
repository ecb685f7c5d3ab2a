package handlers

import (
	stderrors "errors"
	"net/http"

	"portal/internal/api/middleware"
	"portal/internal/engine/webhooks"
	"portal/internal/pkg/errors"
	"portal/internal/platform/audit"
)

// IntegrationHandler manages the chat webhook destination of each channel.
type IntegrationHandler struct {
	registry   *webhooks.Registry
	dispatcher *webhooks.Dispatcher
	audit      *audit.Logger
}

func NewIntegrationHandler(registry *webhooks.Registry, dispatcher *webhooks.Dispatcher, auditLogger *audit.Logger) *IntegrationHandler {
	return &IntegrationHandler{registry: registry, dispatcher: dispatcher, audit: auditLogger}
}

type Integration struct {
	Channel    webhooks.Channel `json:"channel"`
	SettingKey string           `json:"setting_key"`
	URL        string           `json:"url"`
	Configured bool             `json:"configured"`
}

func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	urls, err := h.registry.All(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load integrations", nil)
		return
	}

	out := make([]Integration, 0, len(urls))
	for _, ch := range webhooks.Channels() {
		out = append(out, Integration{
			Channel:    ch,
			SettingKey: ch.SettingKey(),
			URL:        urls[ch],
			Configured: urls[ch] != "",
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type UpdateIntegrationRequest struct {
	URL string `json:"url"`
}

// Update sets the channel's URL. An empty URL disables notifications for it.
func (h *IntegrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.channel(w, r)
	if !ok {
		return
	}

	var req UpdateIntegrationRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.registry.Set(r.Context(), ch, req.URL); err != nil {
		if stderrors.Is(err, webhooks.ErrInvalidURL) {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "URL must be an absolute http(s) address", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to save integration", nil)
		return
	}

	url, _ := h.registry.Get(r.Context(), ch)
	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionIntegrationSet, "integration", string(ch),
		map[string]interface{}{"configured": url != ""})
	writeJSON(w, http.StatusOK, Integration{Channel: ch, SettingKey: ch.SettingKey(), URL: url, Configured: url != ""})
}

// Test sends a fixed sample message through the channel.
func (h *IntegrationHandler) Test(w http.ResponseWriter, r *http.Request) {
	ch, ok := h.channel(w, r)
	if !ok {
		return
	}

	_, err := h.dispatcher.DispatchTo(r.Context(), ch, webhooks.SamplePayload(ch))
	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionIntegrationTested, "integration", string(ch),
		map[string]interface{}{"ok": err == nil})

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	case stderrors.Is(err, webhooks.ErrInvalidURL):
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "No webhook configured for this channel", nil)
	case stderrors.Is(err, webhooks.ErrRelayRejected):
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeRelayRejected, "The chat service rejected the test message", err.Error())
	default:
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to send test message", nil)
	}
}

func (h *IntegrationHandler) channel(w http.ResponseWriter, r *http.Request) (webhooks.Channel, bool) {
	ch, err := webhooks.ParseChannel(param(r, "channel"))
	if err != nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Unknown channel", nil)
		return "", false
	}
	return ch, true
}
