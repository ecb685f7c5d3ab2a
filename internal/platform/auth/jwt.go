package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"portal/internal/platform/config"
)

const issuer = "portal"

// Claims identify an authenticated identity and the session it belongs to.
// Role is not carried; it is read from the profile on every request.
type Claims struct {
	ProfileID string `json:"uid"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenService struct {
	config config.JWTConfig
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{config: cfg}
}

func (s *TokenService) GenerateAccessToken(profileID, email, sessionID string) (string, error) {
	now := time.Now()
	claims := Claims{
		ProfileID: profileID,
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.SessionID == "" {
			return nil, errors.New("token has no session")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
