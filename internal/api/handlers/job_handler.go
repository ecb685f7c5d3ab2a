package handlers

import (
	"net/http"

	"portal/internal/api/middleware"
	"portal/internal/pkg/errors"
	"portal/internal/pkg/validator"
	"portal/internal/platform/audit"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

type JobHandler struct {
	jobs  *repositories.JobRepository
	audit *audit.Logger
}

func NewJobHandler(jobs *repositories.JobRepository, auditLogger *audit.Logger) *JobHandler {
	return &JobHandler{jobs: jobs, audit: auditLogger}
}

type JobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Department  string `json:"department" validate:"omitempty,max=120"`
	Description string `json:"description"`
	IsOpen      *bool  `json:"is_open"`
}

// ListOpen is the public job board.
func (h *JobHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, true)
}

func (h *JobHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, false)
}

func (h *JobHandler) list(w http.ResponseWriter, r *http.Request, openOnly bool) {
	jobs, err := h.jobs.List(r.Context(), openOnly)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list jobs", nil)
		return
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req JobRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	job := &models.Job{
		Title:       req.Title,
		Department:  req.Department,
		Description: req.Description,
		IsOpen:      req.IsOpen == nil || *req.IsOpen,
	}
	if err := h.jobs.Create(r.Context(), job); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create job", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionJobCreated, "job", job.ID, map[string]interface{}{"title": job.Title})
	writeJSON(w, http.StatusCreated, job)
}

func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.GetByID(r.Context(), param(r, "job_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load job", nil)
		return
	}
	if job == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Job not found", nil)
		return
	}

	req := JobRequest{Title: job.Title, Department: job.Department, Description: job.Description, IsOpen: &job.IsOpen}
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	job.Title = req.Title
	job.Department = req.Department
	job.Description = req.Description
	if req.IsOpen != nil {
		job.IsOpen = *req.IsOpen
	}
	if err := h.jobs.Update(r.Context(), job); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update job", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionJobUpdated, "job", job.ID, map[string]interface{}{"is_open": job.IsOpen})
	writeJSON(w, http.StatusOK, job)
}

func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := param(r, "job_id")
	deleted, err := h.jobs.Delete(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to delete job", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Job not found", nil)
		return
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionJobDeleted, "job", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
