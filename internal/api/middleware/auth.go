package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	apiContext "portal/internal/api/context"
	"portal/internal/pkg/errors"
	"portal/internal/platform/auth"
	"portal/internal/platform/repositories"
)

// LoginPath is returned to clients whose session was refused or terminated.
const LoginPath = "/login"

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	sessions *repositories.SessionRepository
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, sessions *repositories.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, sessions: sessions}
}

// Handle accepts a Bearer token whose session row is still live.
func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, msg := BearerToken(r)
		if msg != "" {
			unauthorized(w, msg)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(token)
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		session, err := m.sessions.GetByID(r.Context(), claims.SessionID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load session", nil)
			return
		}
		if session == nil || session.ProfileID != claims.ProfileID || !session.Active(time.Now().Unix()) {
			unauthorized(w, "Session terminated")
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		next(w, r.WithContext(ctx))
	}
}

// BearerToken extracts the token from the Authorization header. On failure
// the second value explains what is wrong with the header.
func BearerToken(r *http.Request) (string, string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "Missing authorization header"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

type redirectHint struct {
	Redirect string `json:"redirect"`
	Reason   string `json:"reason,omitempty"`
}

func unauthorized(w http.ResponseWriter, message string) {
	errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, message, redirectHint{Redirect: LoginPath})
}
