package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonathan/recruit-portal/internal/config"
)

// sessionClaims is the payload of the session cookie.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies HS256-signed session cookies.
// It implements middleware.SessionCodec.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner creates a signer from the session configuration.
func NewSessionSigner(cfg *config.SessionConfig) *SessionSigner {
	return &SessionSigner{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.ExpirationHours) * time.Hour,
		now:    time.Now,
	}
}

// TTL is the cookie lifetime.
func (s *SessionSigner) TTL() time.Duration {
	return s.ttl
}

// Issue signs a cookie value for sessionID.
func (s *SessionSigner) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id is empty")
	}
	now := s.now()
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a cookie value and returns its session id.
func (s *SessionSigner) Parse(value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("session cookie is empty")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("session expired: %w", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("invalid session signature: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("malformed session: %w", err)
		}
		return "", fmt.Errorf("failed to parse session: %w", err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("session is not valid")
	}
	return claims.SessionID, nil
}
