// Package storage holds the small amount of client state the portal persists:
// the bearer token, the cached user and pending flash messages.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Well-known keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyFlash = "flash"
)

// ErrNoSession is returned by session-scoped stores when the context carries no session id.
var ErrNoSession = errors.New("storage: no session id in context")

// Storage is a string key/value store. A missing key is not an error.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// SessionDeleter is implemented by stores that can drop a whole session at once.
type SessionDeleter interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

type sessionIDKey struct{}

// WithSessionID returns a context scoped to the given browser session.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionID returns the session id stored in ctx.
func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok && id != ""
}

// NewSessionID generates a random session id.
func NewSessionID() string {
	return uuid.NewString()
}

func requireSession(ctx context.Context) (string, error) {
	id, ok := SessionID(ctx)
	if !ok {
		return "", ErrNoSession
	}
	return id, nil
}
