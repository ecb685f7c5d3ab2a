package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"portal/internal/api/middleware"
	"portal/internal/pkg/errors"
	"portal/internal/platform/audit"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

// UserHandler is the super admin's profile management surface.
type UserHandler struct {
	profiles *repositories.ProfileRepository
	sessions *repositories.SessionRepository
	audit    *audit.Logger
}

func NewUserHandler(profiles *repositories.ProfileRepository, sessions *repositories.SessionRepository, auditLogger *audit.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, sessions: sessions, audit: auditLogger}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to list users", nil)
		return
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown role", req.Role)
		return
	}

	found, err := h.profiles.UpdateRole(r.Context(), id, role)
	if !h.applied(w, found, err) {
		return
	}
	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionUserRoleChanged, "profile", id,
		map[string]interface{}{"role": string(role)})
	h.respondProfile(w, r, id)
}

// Approve activates a pending account.
func (h *UserHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	found, err := h.profiles.SetActive(r.Context(), id, true, models.StatusActive)
	if !h.applied(w, found, err) {
		return
	}
	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionUserApproved, "profile", id, nil)
	h.respondProfile(w, r, id)
}

// Toggle flips activation. Deactivating also terminates the user's sessions.
func (h *UserHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	current, err := h.profiles.GetByID(r.Context(), id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load user", nil)
		return
	}
	if current == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return
	}

	active := !current.IsActive
	status := models.StatusActive
	if !active {
		status = models.StatusInactive
	}
	found, err := h.profiles.SetActive(r.Context(), id, active, status)
	if !h.applied(w, found, err) {
		return
	}
	if !active {
		h.revokeAll(r, id)
	}

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionUserToggled, "profile", id,
		map[string]interface{}{"is_active": active})
	h.respondProfile(w, r, id)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.target(w, r)
	if !ok {
		return
	}

	found, err := h.profiles.Delete(r.Context(), id)
	if !h.applied(w, found, err) {
		return
	}
	h.revokeAll(r, id)

	h.audit.Log(r.Context(), r, middleware.ProfileFrom(r).ID, audit.ActionUserDeleted, "profile", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// target returns the :user_id parameter, refusing changes to the caller's
// own profile so a super admin cannot lock themselves out.
func (h *UserHandler) target(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := param(r, "user_id")
	if caller := middleware.ProfileFrom(r); caller != nil && caller.ID == id {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "You cannot modify your own account", nil)
		return "", false
	}
	return id, true
}

func (h *UserHandler) applied(w http.ResponseWriter, found bool, err error) bool {
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to update user", nil)
		return false
	}
	if !found {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "User not found", nil)
		return false
	}
	return true
}

func (h *UserHandler) revokeAll(r *http.Request, id string) {
	if n, err := h.sessions.RevokeAllForProfile(r.Context(), id); err != nil {
		log.Error().Err(err).Str("profile_id", id).Msg("failed to revoke sessions")
	} else if n > 0 {
		log.Info().Str("profile_id", id).Int64("sessions", n).Msg("sessions revoked")
	}
}

func (h *UserHandler) respondProfile(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.profiles.GetByID(r.Context(), id)
	if err != nil || p == nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load user", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
