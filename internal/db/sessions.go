package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/recruit-portal/internal/storage"
)

// SessionStore implements storage.Storage on the portal_sessions table.
// Items are scoped to the session id carried by the context.
type SessionStore struct {
	db *DB
}

// NewSessionStore returns a session-scoped store backed by db.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	sid, ok := storage.SessionID(ctx)
	if !ok {
		return "", false, storage.ErrNoSession
	}

	var value string
	err := s.db.pool.QueryRow(ctx,
		`SELECT value FROM portal_sessions WHERE session_id = $1 AND key = $2`,
		sid, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get session item %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SessionStore) SetItem(ctx context.Context, key, value string) error {
	sid, ok := storage.SessionID(ctx)
	if !ok {
		return storage.ErrNoSession
	}

	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO portal_sessions (session_id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, key) DO UPDATE SET value = $3, updated_at = NOW()`,
		sid, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set session item %s: %w", key, err)
	}
	return nil
}

func (s *SessionStore) RemoveItem(ctx context.Context, key string) error {
	sid, ok := storage.SessionID(ctx)
	if !ok {
		return storage.ErrNoSession
	}

	_, err := s.db.pool.Exec(ctx,
		`DELETE FROM portal_sessions WHERE session_id = $1 AND key = $2`,
		sid, key,
	)
	if err != nil {
		return fmt.Errorf("failed to remove session item %s: %w", key, err)
	}
	return nil
}

// DeleteSession removes every item of a session.
func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.pool.Exec(ctx, `DELETE FROM portal_sessions WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeIdle deletes sessions whose newest item is older than maxAge and
// returns the number of rows removed.
func (s *SessionStore) PurgeIdle(ctx context.Context, maxAge time.Duration) (int64, error) {
	tag, err := s.db.pool.Exec(ctx,
		`DELETE FROM portal_sessions WHERE session_id IN (
			SELECT session_id FROM portal_sessions
			GROUP BY session_id
			HAVING MAX(updated_at) < NOW() - make_interval(secs => $1)
		)`,
		maxAge.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge idle sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
