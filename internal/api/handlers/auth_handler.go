package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"portal/internal/api/middleware"
	"portal/internal/pkg/errors"
	"portal/internal/pkg/validator"
	"portal/internal/platform/auth"
	"portal/internal/platform/config"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

type AuthHandler struct {
	identities *repositories.IdentityRepository
	profiles   *repositories.ProfileRepository
	sessions   *repositories.SessionRepository
	tokenSvc   *auth.TokenService
	sessionTTL time.Duration
}

func NewAuthHandler(
	identities *repositories.IdentityRepository,
	profiles *repositories.ProfileRepository,
	sessions *repositories.SessionRepository,
	tokenSvc *auth.TokenService,
	cfg config.JWTConfig,
) *AuthHandler {
	return &AuthHandler{
		identities: identities,
		profiles:   profiles,
		sessions:   sessions,
		tokenSvc:   tokenSvc,
		sessionTTL: cfg.SessionTTL,
	}
}

type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
}

// Signup creates the identity and its pending profile in one transaction.
// The account stays inactive until a super admin approves it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	req.Email = validator.NormalizeEmail(req.Email)
	if err := validator.Struct(req); err != nil {
		writeInputError(w, err)
		return
	}

	existing, err := h.identities.GetByEmail(r.Context(), req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if existing != nil {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Account already exists", nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to hash password", nil)
		return
	}

	tx, err := h.identities.BeginTx(r.Context())
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	identity := &models.Identity{Email: req.Email, PasswordHash: hash}
	if err := h.identities.CreateTx(r.Context(), tx, identity); err != nil {
		if repositories.IsUniqueViolation(err) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Account already exists", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create account", nil)
		return
	}

	profile := &models.Profile{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: req.FullName,
		Role:     models.RoleUnassigned,
		IsActive: false,
		Status:   models.StatusPending,
	}
	if err := h.profiles.CreateTx(r.Context(), tx, profile); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create profile", nil)
		return
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	log.Info().Str("profile_id", profile.ID).Msg("account created, awaiting approval")
	writeJSON(w, http.StatusCreated, profile)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresAt   int64           `json:"expires_at"`
	Profile     *models.Profile `json:"profile,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	identity, err := h.identities.GetByEmail(r.Context(), validator.NormalizeEmail(req.Email))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if identity == nil || !auth.CheckPassword(identity.PasswordHash, req.Password) {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	session, err := h.sessions.Create(r.Context(), identity.ID, h.sessionTTL)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to open session", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(identity.ID, identity.Email, session.ID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	// The profile may not exist yet; the gate settles that on the next request.
	profile, err := h.profiles.GetByID(r.Context(), identity.ID)
	if err != nil {
		log.Warn().Err(err).Str("profile_id", identity.ID).Msg("failed to load profile at login")
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   session.ExpiresAt,
		Profile:     profile,
	})
}

// Logout terminates the session named by the token. It does not require the
// session to be live, so repeating it is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, msg := middleware.BearerToken(r)
	if msg != "" {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, msg, nil)
		return
	}
	claims, err := h.tokenSvc.ValidateToken(token)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
		return
	}

	if _, err := h.sessions.Revoke(r.Context(), claims.SessionID); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to terminate session", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.ProfileFrom(r))
}
