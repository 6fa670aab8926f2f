package server

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-portal/internal/config"
)

func newTestSigner(secret string, now time.Time) *SessionSigner {
	s := NewSessionSigner(&config.SessionConfig{Secret: secret, ExpirationHours: 2})
	s.now = func() time.Time { return now }
	return s
}

func TestSessionSigner_RoundTrip(t *testing.T) {
	s := newTestSigner("0123456789abcdef", testEpoch)

	token, err := s.Issue("session-1")
	require.NoError(t, err)

	sid, err := s.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sid)
	assert.Equal(t, 2*time.Hour, s.TTL())
}

func TestSessionSigner_EmptyID(t *testing.T) {
	s := newTestSigner("0123456789abcdef", testEpoch)

	_, err := s.Issue("")
	assert.Error(t, err)

	_, err = s.Parse("")
	assert.Error(t, err)
}

func TestSessionSigner_Expired(t *testing.T) {
	s := newTestSigner("0123456789abcdef", testEpoch)
	token, err := s.Issue("session-1")
	require.NoError(t, err)

	s.now = func() time.Time { return testEpoch.Add(3 * time.Hour) }
	_, err = s.Parse(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")
}

func TestSessionSigner_WrongSecret(t *testing.T) {
	token, err := newTestSigner("0123456789abcdef", testEpoch).Issue("session-1")
	require.NoError(t, err)

	_, err = newTestSigner("fedcba9876543210", testEpoch).Parse(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid session signature")
}

func TestSessionSigner_Tampered(t *testing.T) {
	s := newTestSigner("0123456789abcdef", testEpoch)
	token, err := s.Issue("session-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[2] = strings.Repeat("A", len(parts[2]))
	_, err = s.Parse(strings.Join(parts, "."))
	assert.Error(t, err)

	_, err = s.Parse("not-a-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed session")
}
