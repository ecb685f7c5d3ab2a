package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiContext "portal/internal/api/context"
	"portal/internal/engine/access"
	"portal/internal/pkg/request"
	"portal/internal/platform/auth"
	"portal/internal/platform/config"
	"portal/internal/platform/models"
	"portal/internal/platform/repositories"
)

var profileCols = []string{"id", "email", "full_name", "role", "is_active", "status", "created_at", "updated_at"}

func newGate(t *testing.T, adminEmails ...string) (*GateMiddleware, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.AccessConfig{AdminEmails: adminEmails, ProfileRetryAttempts: 1, ProfileRetryDelay: time.Millisecond}
	guard := access.NewGuard(
		access.NewResolver(repositories.NewProfileRepository(db), cfg),
		access.NewGate(cfg.AdminEmails),
		repositories.NewSessionRepository(db),
	)
	return NewGateMiddleware(guard), mock
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), apiContext.Claims, claims))
}

func TestGateMiddleware(t *testing.T) {
	claims := &auth.Claims{ProfileID: "p1", Email: "agent@mairie.bc", SessionID: "ses_1"}

	t.Run("allows active super admin", func(t *testing.T) {
		gate, mock := newGate(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = ?")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(profileCols).AddRow("p1", "agent@mairie.bc", "Agent", "SUPER_ADMIN", true, "ACTIVE", 1, 1))

		rr := httptest.NewRecorder()
		handler := gate.Require(models.RoleSuperAdmin)(func(w http.ResponseWriter, r *http.Request) {
			p := ProfileFrom(r)
			require.NotNil(t, p)
			assert.Equal(t, models.RoleSuperAdmin, p.Role)
			w.WriteHeader(http.StatusOK)
		})
		handler(rr, withClaims(httptest.NewRequest("GET", "/", nil), claims))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong role is forbidden and signed out", func(t *testing.T) {
		gate, mock := newGate(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = ?")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(profileCols).AddRow("p1", "agent@mairie.bc", "Agent", "STAFF", true, "ACTIVE", 1, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL")).
			WithArgs(sqlmock.AnyArg(), "ses_1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		rr := httptest.NewRecorder()
		handler := gate.Require(models.RoleSuperAdmin)(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})
		handler(rr, withClaims(httptest.NewRequest("GET", "/", nil), claims))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		var body struct {
			Code    string `json:"code"`
			Details struct {
				Redirect string `json:"redirect"`
				Reason   string `json:"reason"`
			} `json:"details"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "FORBIDDEN", body.Code)
		assert.Equal(t, LoginPath, body.Details.Redirect)
		assert.Equal(t, access.ReasonInsufficientRole, body.Details.Reason)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile is unauthorized", func(t *testing.T) {
		gate, mock := newGate(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = ?")).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(profileCols))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET revoked_at")).
			WithArgs(sqlmock.AnyArg(), "ses_1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		rr := httptest.NewRecorder()
		handler := gate.Require(access.ContentRoles...)(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})
		handler(rr, withClaims(httptest.NewRequest("GET", "/", nil), claims))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no claims", func(t *testing.T) {
		gate, _ := newGate(t)
		rr := httptest.NewRecorder()
		gate.Require(models.RoleStaff)(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tokens := auth.NewTokenService(config.JWTConfig{Secret: "s3cret", AccessTokenTTL: time.Hour})
	m := NewAuthMiddleware(tokens, repositories.NewSessionRepository(db))
	token, err := tokens.GenerateAccessToken("p1", "agent@mairie.bc", "ses_1")
	require.NoError(t, err)

	sessionCols := []string{"id", "profile_id", "expires_at", "revoked_at", "created_at"}
	future := time.Now().Add(time.Hour).Unix()

	t.Run("live session", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = ?")).
			WithArgs("ses_1").
			WillReturnRows(sqlmock.NewRows(sessionCols).AddRow("ses_1", "p1", future, nil, 1))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		m.Handle(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = ?")).
			WithArgs("ses_1").
			WillReturnRows(sqlmock.NewRows(sessionCols).AddRow("ses_1", "p1", future, time.Now().Unix(), 1))

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		m.Handle(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be called")
		})(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		m.Handle(func(w http.ResponseWriter, r *http.Request) {})(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	handler := rl.Limit("relay", 2)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	codes := make([]int, 3)
	var last *httptest.ResponseRecorder
	for i := range codes {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		last = httptest.NewRecorder()
		handler(last, req)
		codes[i] = last.Code
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "30", last.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("198.51.100.1:relay", 2))

	now = now.Add(bucketIdle + time.Second)
	assert.Equal(t, 1, rl.Sweep())
}

func TestRateLimiter_IgnoresSpoofedForwardedFor(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	reached := 0
	handler := rl.Limit("relay", 2)(func(w http.ResponseWriter, r *http.Request) {
		reached++
	})

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/api/v1/relay/discord", nil)
		req.RemoteAddr = "198.51.100.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		handler(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, reached)
}

func TestRateLimiter_KeysOnForwardedClientBehindTrustedProxy(t *testing.T) {
	rl := NewRateLimiter()
	proxies, err := request.NewProxyResolver([]string{"10.0.0.0/8"})
	require.NoError(t, err)

	reached := 0
	limited := rl.Limit("public", 1)(func(w http.ResponseWriter, r *http.Request) {
		reached++
	})
	handler := proxies.Middleware(limited)

	for _, client := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.2"} {
		req := httptest.NewRequest("POST", "/api/v1/contact", nil)
		req.RemoteAddr = "10.0.0.5:443"
		req.Header.Set("X-Forwarded-For", "1.1.1.1, "+client)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, reached)
}
