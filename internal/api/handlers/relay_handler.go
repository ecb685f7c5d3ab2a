package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"portal/internal/engine/webhooks"
	"portal/internal/pkg/validator"
)

// RelayHandler is the public relay facade. It keeps its own flat
// {success} / {error} body shape for the portal's forms.
type RelayHandler struct {
	dispatcher *webhooks.Dispatcher
}

func NewRelayHandler(dispatcher *webhooks.Dispatcher) *RelayHandler {
	return &RelayHandler{dispatcher: dispatcher}
}

type RelayRequest struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	WebhookURL *string         `json:"webhookUrl"`
}

type relayResponse struct {
	Success bool `json:"success"`
	Skipped bool `json:"skipped,omitempty"`
}

type relayError struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func (h *RelayHandler) Discord(w http.ResponseWriter, r *http.Request) {
	var req RelayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, relayError{Error: "Corps de requête invalide"})
		return
	}
	// Destinations are resolved from the channel registry only.
	if req.WebhookURL != nil {
		writeJSON(w, http.StatusBadRequest, relayError{Error: "Le champ webhookUrl n'est pas accepté"})
		return
	}

	payload, err := webhooks.DecodePayload(req.Type, req.Data)
	if err != nil {
		if stderrors.Is(err, webhooks.ErrUnknownType) {
			writeJSON(w, http.StatusBadRequest, relayError{Error: "Type de webhook invalide"})
			return
		}
		writeJSON(w, http.StatusBadRequest, relayError{Error: "Données invalides"})
		return
	}
	if err := validator.Struct(payload); err != nil {
		resp := relayError{Error: "Champs invalides"}
		var verr *validator.ValidationError
		if stderrors.As(err, &verr) {
			for _, f := range verr.Fields {
				resp.Fields = append(resp.Fields, f.Field)
			}
		}
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	res, err := h.dispatcher.Dispatch(r.Context(), payload)
	if err != nil {
		log.Error().Err(err).Str("type", req.Type).Msg("relay dispatch failed")
		writeJSON(w, http.StatusInternalServerError, relayError{Error: "Erreur lors de l'envoi au webhook Discord"})
		return
	}
	writeJSON(w, http.StatusOK, relayResponse{Success: true, Skipped: res.Skipped})
}
