package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"portal/internal/engine/submissions"
	"portal/internal/engine/webhooks"
	"portal/internal/pkg/errors"
)

type SubmissionHandler struct {
	svc *submissions.Service
}

func NewSubmissionHandler(svc *submissions.Service) *SubmissionHandler {
	return &SubmissionHandler{svc: svc}
}

func (h *SubmissionHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req webhooks.Contact
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	res, err := h.svc.SubmitContact(r.Context(), req)
	h.respond(w, res, err)
}

func (h *SubmissionHandler) Procedure(w http.ResponseWriter, r *http.Request) {
	var req webhooks.Procedure
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	res, err := h.svc.SubmitProcedure(r.Context(), req)
	h.respond(w, res, err)
}

func (h *SubmissionHandler) Application(w http.ResponseWriter, r *http.Request) {
	var req submissions.ApplicationForm
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	res, err := h.svc.SubmitApplication(r.Context(), req)
	h.respond(w, res, err)
}

func (h *SubmissionHandler) respond(w http.ResponseWriter, res *submissions.Result, err error) {
	if err != nil {
		if writeInputError(w, err) {
			return
		}
		log.Error().Err(err).Msg("failed to store submission")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to store submission", nil)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
