// Package testsession runs a candidate's timed assessment: countdown,
// answers, navigation and a single submission.
package testsession

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Defaults applied by New.
const (
	DefaultDuration       = time.Hour
	DefaultRedirectDelay  = 1500 * time.Millisecond
	DefaultRedirectTarget = "/dashboard"

	// HurrySeconds is the remaining time below which the UI warns the candidate.
	HurrySeconds = 300
)

// State is the lifecycle of a session.
type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Submitting State = "submitting"
	Submitted  State = "submitted"
)

// Submission triggers, used for metrics and logs.
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

var (
	ErrNotStarted        = errors.New("test has not been started")
	ErrAlreadySubmitting = errors.New("submission already in progress")
	ErrAlreadySubmitted  = errors.New("test already submitted")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrClosed            = errors.New("test session closed")
)

// Submitter sends the answers for scoring.
type Submitter interface {
	Submit(ctx context.Context, req types.SubmitAssessmentRequest) (*types.SubmitResponse, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req types.SubmitAssessmentRequest) (*types.SubmitResponse, error)

func (f SubmitterFunc) Submit(ctx context.Context, req types.SubmitAssessmentRequest) (*types.SubmitResponse, error) {
	return f(ctx, req)
}

// Options configures a Session.
type Options struct {
	// Duration overrides the test's own duration_minutes when the test has none.
	Duration       time.Duration
	RedirectDelay  time.Duration
	RedirectTarget string
	// SubmitTimeout bounds automatic submissions, which have no caller context.
	SubmitTimeout time.Duration

	Clock     Clock
	Submitter Submitter
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.RedirectDelay < 0 {
		o.RedirectDelay = 0
	}
	if o.RedirectTarget == "" {
		o.RedirectTarget = DefaultRedirectTarget
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 30 * time.Second
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Session is one candidate attempting one test. All methods are safe for
// concurrent use.
type Session struct {
	opts  Options
	test  types.Assessment
	index map[string]int
	log   *zap.Logger

	mu         sync.Mutex
	state      State
	remaining  int
	current    int
	answers    map[string]string
	autoFired  bool
	lastErr    error
	result     *types.SubmitResponse
	redirectAt time.Time
	closed     bool
	ticker     Ticker
	stop       chan struct{}
	done       chan struct{}

	// tickHook runs after each tick has been fully processed.
	tickHook func(remaining int)
}

// New prepares a session for test. Correct answers are stripped.
func New(test types.Assessment, opts Options) *Session {
	opts = opts.withDefaults()
	view := test.CandidateView()

	duration := opts.Duration
	if view.DurationMinutes > 0 {
		duration = time.Duration(view.DurationMinutes) * time.Minute
	}

	index := make(map[string]int, len(view.Questions))
	for i, q := range view.Questions {
		index[q.QuestionID] = i
	}

	return &Session{
		opts:      opts,
		test:      view,
		index:     index,
		log:       opts.Logger.Named("testsession").With(zap.String("test_id", view.Key())),
		state:     NotStarted,
		remaining: int(duration / time.Second),
		answers:   make(map[string]string),
	}
}

// Test returns the candidate view of the test.
func (s *Session) Test() types.Assessment {
	return s.test
}

// Start begins the countdown. Starting twice is a no-op.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.closed:
		return ErrClosed
	case s.state != NotStarted:
		return nil
	}

	s.state = InProgress
	s.ticker = s.opts.Clock.NewTicker(time.Second)
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.ticker, s.stop, s.done)
	s.log.Info("test started", zap.Int("remaining_seconds", s.remaining))
	return nil
}

func (s *Session) run(ticker Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			expired := s.tick()
			if expired {
				s.autoSubmit()
			}
			s.mu.Lock()
			hook, remaining := s.tickHook, s.remaining
			s.mu.Unlock()
			if hook != nil {
				hook(remaining)
			}
			if expired {
				return
			}
		}
	}
}

// tick decrements the countdown and reports whether it just reached zero.
// Auto submission is claimed here so it fires at most once.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Submitted || s.closed {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 && !s.autoFired {
		s.autoFired = true
		return true
	}
	return false
}

func (s *Session) autoSubmit() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.SubmitTimeout)
	defer cancel()

	s.log.Info("time expired, submitting automatically")
	if _, err := s.submit(ctx, TriggerAuto); err != nil {
		s.log.Warn("automatic submission did not complete", zap.Error(err))
	}
}

// Answer records value for questionID, replacing any earlier answer.
func (s *Session) Answer(questionID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	if _, ok := s.index[questionID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	s.answers[questionID] = value
	return nil
}

// Goto moves to question i, clamped to the valid range. It returns the new index.
func (s *Session) Goto(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.test.Questions) - 1
	s.current = max(0, min(i, last))
	return s.current
}

// Next moves forward one question.
func (s *Session) Next() int {
	s.mu.Lock()
	i := s.current + 1
	s.mu.Unlock()
	return s.Goto(i)
}

// Prev moves back one question.
func (s *Session) Prev() int {
	s.mu.Lock()
	i := s.current - 1
	s.mu.Unlock()
	return s.Goto(i)
}

// Submit sends the answers. Only one submission may be in flight and only
// one may succeed.
func (s *Session) Submit(ctx context.Context) (*types.SubmitResponse, error) {
	return s.submit(ctx, TriggerManual)
}

func (s *Session) submit(ctx context.Context, trigger string) (*types.SubmitResponse, error) {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return nil, ErrClosed
	case s.state == NotStarted:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case s.state == Submitting:
		s.mu.Unlock()
		s.opts.Metrics.ObserveSubmission(trigger, "suppressed")
		return nil, ErrAlreadySubmitting
	case s.state == Submitted:
		s.mu.Unlock()
		s.opts.Metrics.ObserveSubmission(trigger, "suppressed")
		return nil, ErrAlreadySubmitted
	}
	s.state = Submitting
	s.lastErr = nil
	req := s.requestLocked()
	s.mu.Unlock()

	resp, err := s.opts.Submitter.Submit(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = InProgress
		s.lastErr = err
		s.opts.Metrics.ObserveSubmission(trigger, "failure")
		s.log.Warn("submission failed", zap.String("trigger", trigger), zap.Error(err))
		return nil, err
	}

	s.state = Submitted
	s.result = resp
	s.redirectAt = s.opts.Clock.Now().Add(s.opts.RedirectDelay)
	s.stopTickerLocked()
	s.opts.Metrics.ObserveSubmission(trigger, "success")
	s.log.Info("test submitted", zap.String("trigger", trigger), zap.Int("answered", len(s.answers)))
	return resp, nil
}

// requestLocked builds one response per question, in question order, with an
// empty answer for unanswered questions.
func (s *Session) requestLocked() types.SubmitAssessmentRequest {
	responses := make([]types.AnswerRecord, len(s.test.Questions))
	for i, q := range s.test.Questions {
		responses[i] = types.AnswerRecord{QuestionID: q.QuestionID, Answer: s.answers[q.QuestionID]}
	}
	return types.SubmitAssessmentRequest{TestID: s.test.Key(), Responses: responses}
}

func (s *Session) checkOpen() error {
	switch {
	case s.closed:
		return ErrClosed
	case s.state == NotStarted:
		return ErrNotStarted
	case s.state == Submitted:
		return ErrAlreadySubmitted
	}
	return nil
}

// stopTickerLocked signals the countdown loop to exit. It does not wait
// because the loop may be the caller.
func (s *Session) stopTickerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

// Close stops the countdown and waits for the loop to exit. Calling Close
// more than once is safe. A submission already in flight still completes.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTickerLocked()
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
	s.log.Debug("test session closed")
}

// Finished reports whether the session is submitted or closed.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || s.state == Submitted
}

func (s *Session) sweepable(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || (s.state == Submitted && !now.Before(s.redirectAt))
}
