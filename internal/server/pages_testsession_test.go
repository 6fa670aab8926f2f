package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-portal/internal/testsession"
	"github.com/jonathan/recruit-portal/internal/types"
)

func sampleTest(candidateID string, status types.TestStatus) types.Assessment {
	return types.Assessment{
		IDs:         types.IDs{ID: "t1"},
		CandidateID: candidateID,
		JobID:       "jd1",
		TestType:    "Technical",
		TestStatus:  status,
		TotalMarks:  10,
		Questions: []types.Question{
			{QuestionID: "q1", QuestionText: "What does defer do?", Options: []string{"A", "B", "C"}, Marks: 5},
			{QuestionID: "q2", QuestionText: "What is a goroutine?", Options: []string{"A", "B", "C"}, Marks: 5},
		},
	}
}

// candidateWithTest signs in candidate c1 and serves test t1 from the backend.
func candidateWithTest(t *testing.T, test types.Assessment) *testServer {
	t.Helper()
	ts := newTestServer(t)
	ts.loginAs(t, "c1", types.RoleCandidate)
	ts.main.respond("GET /ca/test/t1", http.StatusOK, types.TestResponse{Success: true, Test: &test})
	return ts
}

func TestTestFlow_StartAnswerSubmit(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestPending))
	ts.main.respond("POST /ca/submit", http.StatusOK, types.SubmitResponse{Success: true, Message: "scored"})

	resp := ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := document(t, resp)
	assert.Contains(t, doc.Find(".card h2").First().Text(), "Instructions")
	assert.Contains(t, doc.Text(), "30 minutes")
	assert.Equal(t, "/candidate/tests/t1/start", doc.Find("form[action$='/start']").AttrOr("action", ""))

	resp = ts.post(t, "/candidate/tests/t1/start", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/candidate/tests/t1", location(resp))

	resp = ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = document(t, resp)
	assert.Equal(t, "30:00", doc.Find("#clock").Text())
	assert.Contains(t, doc.Text(), "What does defer do?")
	assert.Equal(t, 2, doc.Find(".palette button").Length())

	resp = ts.post(t, "/candidate/tests/t1/answer", url.Values{"question_id": {"q1"}, "answer": {"B"}, "move": {"next"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = ts.get(t, "/candidate/tests/t1")
	doc = document(t, resp)
	assert.Contains(t, doc.Text(), "What is a goroutine?")
	assert.Equal(t, "1", doc.Find("#answered").Text())
	assert.Equal(t, 1, doc.Find("button[formaction$='/submit']").Length())

	resp = ts.post(t, "/candidate/tests/t1/submit", url.Values{"question_id": {"q2"}, "answer": {"C"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/candidate/tests/t1", location(resp))

	calls := ts.main.callsTo("/ca/submit")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"test_id":"t1","responses":[{"question_id":"q1","answer":"B"},{"question_id":"q2","answer":"C"}]}`, calls[0].Body)

	resp = ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc = document(t, resp)
	assert.Equal(t, submittedMessage, strings.TrimSpace(doc.Find(".flash-success").Text()))
	assert.Equal(t, "2", doc.Find("meta[http-equiv=refresh]").AttrOr("content", ""))

	// A second submission is refused locally.
	resp = ts.post(t, "/candidate/tests/t1/submit", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Len(t, ts.main.callsTo("/ca/submit"), 1)

	ts.clock.Advance(2 * time.Second)
	resp = ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/dashboard", location(resp))
	assert.Equal(t, 0, ts.srv.tests.Len())
}

func TestTestEvents(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestPending))
	ts.main.respond("POST /ca/submit", http.StatusOK, types.SubmitResponse{Success: true})

	resp := ts.get(t, "/candidate/tests/t1/events")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ts.get(t, "/candidate/tests/t1")
	ts.post(t, "/candidate/tests/t1/start", nil)
	ts.post(t, "/candidate/tests/t1/submit", nil)

	resp = ts.get(t, "/candidate/tests/t1/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	events := parseEvents(t, string(body))
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, "submitted", last.name)
	var payload submittedEvent
	require.NoError(t, json.Unmarshal([]byte(last.data), &payload))
	assert.Equal(t, submittedMessage, payload.Message)
	assert.Equal(t, "/dashboard", payload.Redirect)
	assert.EqualValues(t, 1500, payload.DelayMilli)
}

func TestTestEvents_StopsWhenLeft(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestPending))

	ts.get(t, "/candidate/tests/t1")
	ts.post(t, "/candidate/tests/t1/start", nil)

	resp := ts.get(t, "/candidate/tests/t1/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Read the first tick before leaving so the stream is known to be live.
	buf := make([]byte, 512)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "event: tick")

	left := ts.post(t, "/candidate/tests/t1/leave", nil)
	require.Equal(t, http.StatusSeeOther, left.StatusCode)
	assert.Equal(t, "/candidate/tests", location(left))

	rest, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(rest), "event: submitted")
}

func TestTestEvents_UnauthorizedAutoSubmitNavigatesToLogin(t *testing.T) {
	test := sampleTest("c1", types.TestPending)
	test.DurationMinutes = 1
	ts := candidateWithTest(t, test)
	ts.main.respond("POST /ca/submit", http.StatusUnauthorized, map[string]string{"message": "jwt expired"})

	ts.get(t, "/candidate/tests/t1")
	ts.post(t, "/candidate/tests/t1/start", nil)

	resp := ts.get(t, "/candidate/tests/t1/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < 60; i++ {
		require.True(t, ts.clock.Tick(), "tick %d", i+1)
	}

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	events := parseEvents(t, string(body))
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, "navigate", last.name)
	var payload navigateEvent
	require.NoError(t, json.Unmarshal([]byte(last.data), &payload))
	assert.Equal(t, "/auth/login", payload.Redirect)
	assert.Equal(t, "jwt expired", payload.Message)
	for _, ev := range events {
		assert.NotEqual(t, "error", ev.name)
	}

	assert.Len(t, ts.main.callsTo("/ca/submit"), 1)
	assert.Equal(t, 0, ts.srv.tests.Len())

	resp = ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login", location(resp))
}

func TestTestEvents_BackendIDDiffersFromRoute(t *testing.T) {
	test := sampleTest("c1", types.TestPending)
	test.ID = "assessment-7"
	ts := candidateWithTest(t, test)

	ts.get(t, "/candidate/tests/t1")
	ts.post(t, "/candidate/tests/t1/start", nil)

	sid := onlySession(t, ts)
	_, ok := ts.srv.tests.Get(sid, "t1")
	require.True(t, ok)

	resp := ts.get(t, "/candidate/tests/t1/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	left := ts.post(t, "/candidate/tests/t1/leave", nil)
	require.Equal(t, http.StatusSeeOther, left.StatusCode)
	assert.Equal(t, 0, ts.srv.tests.Len())
}

func TestTest_SubmitBeforeStart(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestPending))

	resp := ts.post(t, "/candidate/tests/t1/submit", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, ts.main.callsTo("/ca/submit"))

	resp = ts.get(t, "/candidate/tests/t1")
	assert.Equal(t, "Start the test before answering.", strings.TrimSpace(document(t, resp).Find(".flash-error").Text()))
}

func TestTest_SubmitFailureKeepsTestOpen(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestPending))
	ts.main.respond("POST /ca/submit", http.StatusServiceUnavailable, map[string]string{"message": "scoring unavailable"})

	ts.get(t, "/candidate/tests/t1")
	ts.post(t, "/candidate/tests/t1/start", nil)
	resp := ts.post(t, "/candidate/tests/t1/submit", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp = ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := document(t, resp)
	assert.Equal(t, "scoring unavailable", strings.TrimSpace(doc.Find("main > .flash-error").Text()))
	assert.Equal(t, 1, doc.Find("#clock").Length())
}

func TestTest_OwnedByAnotherCandidate(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("someone-else", types.TestPending))

	resp := ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, document(t, resp).Find(".error-state").Text(), "No test found")
	assert.Equal(t, 0, ts.srv.tests.Len())
}

func TestTest_AlreadyCompleted(t *testing.T) {
	ts := candidateWithTest(t, sampleTest("c1", types.TestCompleted))

	resp := ts.get(t, "/candidate/tests/t1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, document(t, resp).Text(), "Assessment already submitted")

	resp = ts.post(t, "/candidate/tests/t1/start", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	sid := onlySession(t, ts)
	sess, ok := ts.srv.tests.Get(sid, "t1")
	require.True(t, ok)
	assert.Equal(t, testsession.NotStarted, sess.Snapshot().State)
}

func onlySession(t *testing.T, ts *testServer) string {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	for _, c := range ts.client.Jar.Cookies(u) {
		if c.Name == "recruit_session" {
			sid, err := ts.srv.signer.Parse(c.Value)
			require.NoError(t, err)
			return sid
		}
	}
	t.Fatal("no session cookie")
	return ""
}

type sseEvent struct {
	name string
	data string
}

func parseEvents(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(strings.TrimSpace(body), "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.data = strings.TrimPrefix(line, "data: ")
			}
		}
		if ev.name != "" {
			events = append(events, ev)
		}
	}
	return events
}
