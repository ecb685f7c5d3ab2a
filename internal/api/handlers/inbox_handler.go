package handlers

import (
	"net/http"
	"time"

	"portal/internal/api/middleware"
	"portal/internal/pkg/errors"
	"portal/internal/pkg/validator"
	"portal/internal/platform/audit"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

// InboxHandler lists stored submissions with their notified flag and lets
// staff triage them.
type InboxHandler struct {
	contacts     *repositories.ContactMessageRepository
	procedures   *repositories.ProcedureRepository
	applications *repositories.ApplicationRepository
	dashboard    *repositories.DashboardRepository
	audit        *audit.Logger
}

func NewInboxHandler(
	contacts *repositories.ContactMessageRepository,
	procedures *repositories.ProcedureRepository,
	applications *repositories.ApplicationRepository,
	dashboard *repositories.DashboardRepository,
	auditLogger *audit.Logger,
) *InboxHandler {
	return &InboxHandler{
		contacts:     contacts,
		procedures:   procedures,
		applications: applications,
		dashboard:    dashboard,
		audit:        auditLogger,
	}
}

type ProcedureStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING PROCESSED REJECTED"`
}

func (h *InboxHandler) Messages(w http.ResponseWriter, r *http.Request) {
	items, err := h.contacts.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list messages", nil)
		return
	}
	if items == nil {
		items = []*models.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InboxHandler) Procedures(w http.ResponseWriter, r *http.Request) {
	items, err := h.procedures.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list procedures", nil)
		return
	}
	if items == nil {
		items = []*models.ProcedureSubmission{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InboxHandler) Applications(w http.ResponseWriter, r *http.Request) {
	items, err := h.applications.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list applications", nil)
		return
	}
	if items == nil {
		items = []*models.Application{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InboxHandler) SetProcedureStatus(w http.ResponseWriter, r *http.Request) {
	var req ProcedureStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}
	status, err := models.ParseSubmissionStatus(req.Status)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid status", nil)
		return
	}

	id := param(r, "submission_id")
	updated, err := h.procedures.SetStatus(r.Context(), id, status)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update procedure", nil)
		return
	}
	if !updated {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Procedure not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionProcedureStatus, "procedure", id, map[string]interface{}{"status": string(status)})
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(status)})
}

func (h *InboxHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := param(r, "message_id")
	deleted, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete message", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Message not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionMessageDeleted, "message", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the counters shown on the admin home page.
func (h *InboxHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.Counts(r.Context(), time.Now())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load dashboard", nil)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
