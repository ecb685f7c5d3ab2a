package handlers

import (
	"net/http"

	"portal/internal/pkg/errors"
	"portal/internal/platform/audit"
	"portal/internal/platform/models"
)

type AuditHandler struct {
	logger *audit.Logger
}

func NewAuditHandler(logger *audit.Logger) *AuditHandler {
	return &AuditHandler{logger: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.logger.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list audit logs", nil)
		return
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
