package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal/internal/platform/config"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "s3cret", AccessTokenTTL: time.Hour})

	token, err := svc.GenerateAccessToken("p1", "agent@mairie.bc", "ses_1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", claims.ProfileID)
	assert.Equal(t, "agent@mairie.bc", claims.Email)
	assert.Equal(t, "ses_1", claims.SessionID)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(config.JWTConfig{Secret: "s3cret", AccessTokenTTL: time.Hour})
	other := NewTokenService(config.JWTConfig{Secret: "other", AccessTokenTTL: time.Hour})
	expired := NewTokenService(config.JWTConfig{Secret: "s3cret", AccessTokenTTL: -time.Minute})

	foreign, err := other.GenerateAccessToken("p1", "a@b.c", "ses_1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.Error(t, err)

	stale, err := expired.GenerateAccessToken("p1", "a@b.c", "ses_1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.Error(t, err)

	noSession, err := svc.GenerateAccessToken("p1", "a@b.c", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(noSession)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
