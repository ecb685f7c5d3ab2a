package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_UsesDefaultStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, ErrCodeForbidden, "Access denied", map[string]string{"redirect": "/login"})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "Forbidden", body.Error)
	assert.Equal(t, ErrCodeForbidden, body.Code)
	assert.Equal(t, "Access denied", body.Message)
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, Status(ErrCodeRateLimitExceeded))
	assert.Equal(t, http.StatusBadGateway, Status(ErrCodeRelayRejected))
	assert.Equal(t, http.StatusInternalServerError, Status(Code("SOMETHING_ELSE")))
}
