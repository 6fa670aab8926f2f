package testsession

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/types"
)

type key struct {
	session string
	test    string
}

// Manager keeps live sessions keyed by browser session and test id.
type Manager struct {
	opts Options

	mu       sync.Mutex
	sessions map[key]*Session
}

// NewManager creates a manager. opts is the template for every session.
func NewManager(opts Options) *Manager {
	return &Manager{opts: opts.withDefaults(), sessions: make(map[key]*Session)}
}

// Open returns the live session for (sessionID, test.Key()), creating it when
// absent or when the previous one has been closed.
func (m *Manager) Open(sessionID string, test types.Assessment) *Session {
	return m.OpenWith(sessionID, test.Key(), test, m.opts.Submitter)
}

// OpenWith is Open with a per-session submitter, so submissions carry the
// candidate's own credentials. The session is stored under testID, which
// Get and Close must use as well.
func (m *Manager) OpenWith(sessionID, testID string, test types.Assessment, submitter Submitter) *Session {
	k := key{session: sessionID, test: testID}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[k]; ok {
		s.mu.Lock()
		closed := s.closed
		s.mu.Unlock()
		if !closed {
			return s
		}
	}

	opts := m.opts
	opts.Submitter = submitter
	s := New(test, opts)
	m.sessions[k] = s
	m.updateGaugeLocked()
	return s
}

// Get returns the live session for (sessionID, testID).
func (m *Manager) Get(sessionID, testID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key{session: sessionID, test: testID}]
	return s, ok
}

// Close stops and forgets one session.
func (m *Manager) Close(sessionID, testID string) {
	k := key{session: sessionID, test: testID}
	m.mu.Lock()
	s, ok := m.sessions[k]
	delete(m.sessions, k)
	m.updateGaugeLocked()
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// CloseSession stops every test belonging to a browser session, e.g. on logout.
func (m *Manager) CloseSession(sessionID string) {
	var closing []*Session
	m.mu.Lock()
	for k, s := range m.sessions {
		if k.session == sessionID {
			closing = append(closing, s)
			delete(m.sessions, k)
		}
	}
	m.updateGaugeLocked()
	m.mu.Unlock()

	for _, s := range closing {
		s.Close()
	}
}

// Sweep forgets sessions that are closed, or submitted with their redirect
// due at now, and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	var finished []*Session
	m.mu.Lock()
	for k, s := range m.sessions {
		if s.sweepable(now) {
			finished = append(finished, s)
			delete(m.sessions, k)
		}
	}
	m.updateGaugeLocked()
	m.mu.Unlock()

	for _, s := range finished {
		s.Close()
	}
	if len(finished) > 0 {
		m.opts.Logger.Debug("swept test sessions", zap.Int("count", len(finished)))
	}
	return len(finished)
}

// Shutdown closes every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[key]*Session)
	m.updateGaugeLocked()
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) updateGaugeLocked() {
	m.opts.Metrics.SetActiveTestSessions(len(m.sessions))
}
