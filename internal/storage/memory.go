package storage

import (
	"context"
	"sync"
	"time"
)

// Memory keeps items per session in process memory.
type Memory struct {
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]map[string]string
	// written is the time of each session's most recent write.
	written map[string]time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock is NewMemory with the write timestamps taken from now.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		now:      now,
		sessions: make(map[string]map[string]string),
		written:  make(map[string]time.Time),
	}
}

func (m *Memory) GetItem(ctx context.Context, key string) (string, bool, error) {
	sid, err := requireSession(ctx)
	if err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.sessions[sid][key]
	return v, ok, nil
}

func (m *Memory) SetItem(ctx context.Context, key, value string) error {
	sid, err := requireSession(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	items, ok := m.sessions[sid]
	if !ok {
		items = make(map[string]string)
		m.sessions[sid] = items
	}
	items[key] = value
	m.written[sid] = m.now()
	return nil
}

func (m *Memory) RemoveItem(ctx context.Context, key string) error {
	sid, err := requireSession(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if items, ok := m.sessions[sid]; ok {
		delete(items, key)
		if len(items) == 0 {
			delete(m.sessions, sid)
			delete(m.written, sid)
		}
	}
	return nil
}

// DeleteSession drops every item of a session.
func (m *Memory) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	delete(m.written, sessionID)
	m.mu.Unlock()
	return nil
}

// PurgeIdle drops sessions whose last write is older than maxAge and returns
// how many were dropped.
func (m *Memory) PurgeIdle(_ context.Context, maxAge time.Duration) (int64, error) {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for sid, at := range m.written {
		if at.Before(cutoff) {
			delete(m.sessions, sid)
			delete(m.written, sid)
			n++
		}
	}
	return n, nil
}

// Len reports how many sessions hold at least one item.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
