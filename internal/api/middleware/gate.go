package middleware

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"

	apiContext "portal/internal/api/context"
	"portal/internal/engine/access"
	"portal/internal/pkg/errors"
	"portal/internal/platform/auth"
	"portal/internal/platform/models"
)

// GateMiddleware runs the access gate for authenticated routes and stores the
// resolved profile in the request context.
type GateMiddleware struct {
	guard *access.Guard
}

func NewGateMiddleware(guard *access.Guard) *GateMiddleware {
	return &GateMiddleware{guard: guard}
}

// Require must run after AuthMiddleware.Handle. Any denial signs the caller
// out: 403 for a wrong role, 401 otherwise, both pointing at the login page.
func (m *GateMiddleware) Require(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			claims, ok := r.Context().Value(apiContext.Claims).(*auth.Claims)
			if !ok {
				unauthorized(w, "No authentication claims found")
				return
			}

			profile, err := m.guard.Authorize(r.Context(), access.Subject{
				ProfileID: claims.ProfileID,
				Email:     claims.Email,
				SessionID: claims.SessionID,
			}, roles)
			if err != nil {
				var denied *access.DeniedError
				switch {
				case stderrors.As(err, &denied):
					code := errors.ErrCodeUnauthorized
					if denied.RoleMismatch() {
						code = errors.ErrCodeForbidden
					}
					errors.Write(w, code, "Access denied, session terminated", redirectHint{Redirect: LoginPath, Reason: denied.Reason})
				case stderrors.Is(err, access.ErrUnauthenticated):
					unauthorized(w, "Not authenticated")
				default:
					log.Error().Err(err).Str("profile_id", claims.ProfileID).Msg("failed to authorize request")
					errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load profile", nil)
				}
				return
			}

			ctx := context.WithValue(r.Context(), apiContext.Profile, profile)
			next(w, r.WithContext(ctx))
		}
	}
}

// ProfileFrom returns the profile stored by Require.
func ProfileFrom(r *http.Request) *models.Profile {
	p, _ := r.Context().Value(apiContext.Profile).(*models.Profile)
	return p
}
