package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/server/middleware"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/testsession"
	"github.com/jonathan/recruit-portal/internal/types"
)

const (
	submittedMessage      = "Assessment submitted successfully!"
	sessionExpiredMessage = "Your session has expired. Please sign in again."
)

type testView struct {
	Test    types.Assessment
	Snap    testsession.Snapshot
	Minutes int
	// Taken is set when the backend already holds a submission for the test.
	Taken bool
	// Refresh is the number of seconds until the post-submit redirect.
	Refresh int
}

func testPath(testID string) string {
	return "/candidate/tests/" + testID
}

// openTest returns the live session for the requested test, loading the test
// and starting a new session when needed. It writes the response and returns
// false on failure.
func (s *Server) openTest(w http.ResponseWriter, r *http.Request, pd *pageData) (*testsession.Session, bool) {
	sid, ok := middleware.SessionID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	testID := chi.URLParam(r, "testID")

	if sess, ok := s.tests.Get(sid, testID); ok && !sess.Snapshot().Closed {
		return sess, true
	}

	resp, err := s.api.Assessments.Test(r.Context(), testID)
	if err == nil && (resp.Test == nil || !ownedBy(*resp.Test, candidateID(r))) {
		err = &ErrNotFound{What: "test", ID: testID}
	}
	if err != nil {
		msg := "Failed to load assessment"
		if HTTPStatus(err) == http.StatusNotFound {
			msg = "No test found"
		}
		s.fetchFailed(w, r, "test", pd, err, msg)
		return nil, false
	}

	// Automatic submission has no request, so the submitter carries the
	// browser session that holds the candidate's token.
	submit := testsession.SubmitterFunc(func(ctx context.Context, req types.SubmitAssessmentRequest) (*types.SubmitResponse, error) {
		return s.api.Assessments.Submit(storage.WithSessionID(ctx, sid), req)
	})
	return s.tests.OpenWith(sid, testID, *resp.Test, submit), true
}

// ownedBy reports whether the test was assigned to uid. Tests without a
// candidate id are not restricted.
func ownedBy(test types.Assessment, uid string) bool {
	return test.CandidateID == "" || test.CandidateID == uid
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "Assessment"}
	sess, ok := s.openTest(w, r, pd)
	if !ok {
		return
	}

	snap := sess.Snapshot()
	now := s.clock.Now()
	if snap.RedirectDue(now) {
		if sid, ok := middleware.SessionID(r); ok {
			s.tests.Close(sid, chi.URLParam(r, "testID"))
		}
		seeOther(w, r, snap.RedirectTarget)
		return
	}

	test := sess.Test()
	view := testView{Test: test, Snap: snap, Minutes: test.DurationMinutes, Taken: alreadyTaken(test, snap)}
	if view.Minutes <= 0 {
		view.Minutes = int(s.cfg.TestDuration.Minutes())
	}
	if snap.State == testsession.Submitted {
		view.Refresh = int(math.Ceil(snap.RedirectAt.Sub(now).Seconds()))
		if view.Refresh < 1 {
			view.Refresh = 1
		}
	}
	if test.TestType != "" {
		pd.Title = test.TestType + " Assessment"
	}
	pd.Data = view
	s.render(w, r, http.StatusOK, "test", pd)
}

// alreadyTaken reports whether a fresh session was opened for a test the
// backend has already scored.
func alreadyTaken(test types.Assessment, snap testsession.Snapshot) bool {
	if snap.State != testsession.NotStarted {
		return false
	}
	return test.TestStatus == types.TestCompleted || test.TestStatus == types.TestEvaluated
}

func (s *Server) handleTestStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openTest(w, r, &pageData{Title: "Assessment"})
	if !ok {
		return
	}
	if alreadyTaken(sess.Test(), sess.Snapshot()) {
		s.setFlash(r.Context(), flashInfo, sessionMessage(testsession.ErrAlreadySubmitted))
	} else if err := sess.Start(); err != nil {
		s.setFlash(r.Context(), flashError, sessionMessage(err))
	}
	seeOther(w, r, testPath(chi.URLParam(r, "testID")))
}

// handleTestAnswer records the selected option and optionally moves on.
func (s *Server) handleTestAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	sess, ok := s.openTest(w, r, &pageData{Title: "Assessment"})
	if !ok {
		return
	}

	if qid := r.PostForm.Get("question_id"); qid != "" && r.PostForm.Has("answer") {
		if err := sess.Answer(qid, r.PostForm.Get("answer")); err != nil {
			s.setFlash(r.Context(), flashError, sessionMessage(err))
		}
	}
	move(sess, r.PostForm.Get("move"))
	seeOther(w, r, testPath(chi.URLParam(r, "testID")))
}

// handleTestGoto jumps to a question from the palette.
func (s *Server) handleTestGoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	sess, ok := s.openTest(w, r, &pageData{Title: "Assessment"})
	if !ok {
		return
	}
	if i, err := strconv.Atoi(r.PostForm.Get("index")); err == nil {
		sess.Goto(i)
	} else {
		move(sess, r.PostForm.Get("dir"))
	}
	seeOther(w, r, testPath(chi.URLParam(r, "testID")))
}

func move(sess *testsession.Session, dir string) {
	switch dir {
	case "next":
		sess.Next()
	case "prev":
		sess.Prev()
	}
}

// handleTestSubmit records any answer sent with the form, then submits.
func (s *Server) handleTestSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	back := testPath(chi.URLParam(r, "testID"))
	sess, ok := s.openTest(w, r, &pageData{Title: "Assessment"})
	if !ok {
		return
	}

	if qid := r.PostForm.Get("question_id"); qid != "" && r.PostForm.Has("answer") {
		if err := sess.Answer(qid, r.PostForm.Get("answer")); err != nil && !errors.Is(err, testsession.ErrAlreadySubmitted) {
			s.log.Debug("answer not recorded before submit", zap.Error(err))
		}
	}

	if _, err := sess.Submit(ctx); err != nil {
		switch {
		case errors.Is(err, testsession.ErrAlreadySubmitted), errors.Is(err, testsession.ErrAlreadySubmitting):
			s.setFlash(ctx, flashInfo, sessionMessage(err))
			seeOther(w, r, back)
		case errors.Is(err, testsession.ErrNotStarted), errors.Is(err, testsession.ErrClosed):
			s.setFlash(ctx, flashError, sessionMessage(err))
			seeOther(w, r, back)
		default:
			s.mutationFailed(w, r, err, "Failed to submit assessment", back)
		}
		return
	}
	s.setFlash(ctx, flashSuccess, submittedMessage)
	seeOther(w, r, back)
}

// handleTestEvents streams the countdown until the test is submitted, the
// session is closed or the client goes away.
func (s *Server) handleTestEvents(w http.ResponseWriter, r *http.Request) {
	sid, _ := middleware.SessionID(r)
	testID := chi.URLParam(r, "testID")
	sess, ok := s.tests.Get(sid, testID)
	if !ok {
		http.Error(w, "Test not open", http.StatusNotFound)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// Pacing uses wall time; the countdown itself runs on the session clock.
	ticker := time.NewTicker(s.eventInterval)
	defer ticker.Stop()

	var reported error
	for {
		snap := sess.Snapshot()
		switch {
		case snap.Closed:
			return
		case snap.State == testsession.Submitted:
			delay := max(snap.RedirectAt.Sub(s.clock.Now()).Milliseconds(), 0)
			sse.WriteSubmitted(submittedMessage, snap.RedirectTarget, delay) //nolint:errcheck
			return
		case errors.Is(snap.Err, httpclient.ErrUnauthorized):
			// The failed submission already cleared the token. No request is
			// in flight to redirect, so the page is told to go to login.
			s.log.Info("test stream ended by unauthorized submission", zap.String("test_id", testID))
			sse.WriteNavigate(httpclient.LoginPath, httpclient.UserMessage(snap.Err, sessionExpiredMessage)) //nolint:errcheck
			s.tests.Close(sid, testID)
			return
		}

		if snap.Err != nil && snap.Err != reported {
			reported = snap.Err
			sse.WriteError(httpclient.UserMessage(snap.Err, "Failed to submit assessment"))
		}
		if err := sse.WriteTick(snap); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) handleTestLeave(w http.ResponseWriter, r *http.Request) {
	if sid, ok := middleware.SessionID(r); ok {
		s.tests.Close(sid, chi.URLParam(r, "testID"))
	}
	seeOther(w, r, "/candidate/tests")
}

// sessionMessage turns a test session error into a sentence for the page.
func sessionMessage(err error) string {
	switch {
	case errors.Is(err, testsession.ErrNotStarted):
		return "Start the test before answering."
	case errors.Is(err, testsession.ErrAlreadySubmitting):
		return "Your answers are being submitted."
	case errors.Is(err, testsession.ErrAlreadySubmitted):
		return "This test has already been submitted."
	case errors.Is(err, testsession.ErrUnknownQuestion):
		return "That question is not part of this test."
	case errors.Is(err, testsession.ErrClosed):
		return "This test session has ended."
	default:
		return httpclient.UserMessage(err, "Something went wrong with your test.")
	}
}
