package testsession

import (
	"fmt"
	"time"

	"github.com/jonathan/recruit-portal/internal/types"
)

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	TestID    string
	TestType  string
	State     State
	Closed    bool
	Remaining int
	Clock     string
	Hurry     bool

	Current  int
	Total    int
	Answered int
	Progress float64

	Question *types.Question
	Answer   string
	Answers  map[string]string

	Err            error
	Result         *types.SubmitResponse
	RedirectAt     time.Time
	RedirectTarget string
}

// FormatClock renders seconds as m:ss with unpadded minutes.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.test.Questions)
	snap := Snapshot{
		TestID:         s.test.Key(),
		TestType:       s.test.TestType,
		State:          s.state,
		Closed:         s.closed,
		Remaining:      s.remaining,
		Clock:          FormatClock(s.remaining),
		Hurry:          s.remaining < HurrySeconds,
		Current:        s.current,
		Total:          total,
		Answered:       len(s.answers),
		Answers:        make(map[string]string, len(s.answers)),
		Err:            s.lastErr,
		Result:         s.result,
		RedirectAt:     s.redirectAt,
		RedirectTarget: s.opts.RedirectTarget,
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	if total > 0 {
		snap.Progress = float64(s.current+1) / float64(total) * 100
		q := s.test.Questions[s.current]
		snap.Question = &q
		snap.Answer = s.answers[q.QuestionID]
	}
	return snap
}

// HasAnswer reports whether questionID has an answer in the snapshot.
func (s Snapshot) HasAnswer(questionID string) bool {
	_, ok := s.Answers[questionID]
	return ok
}

// RedirectDue reports whether the post-submit redirect should happen at now.
func (s Snapshot) RedirectDue(now time.Time) bool {
	return s.State == Submitted && !now.Before(s.RedirectAt)
}
