package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/types"
)

type backend struct {
	mu       sync.Mutex
	mux      *http.ServeMux
	requests []string
	bodies   map[string]map[string]any
}

func newBackend() *backend {
	return &backend{mux: http.NewServeMux(), bodies: map[string]map[string]any{}}
}

func (b *backend) handle(pattern, response string) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.requests = append(b.requests, key)
		b.bodies[r.URL.Path] = body
		b.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	})
}

func (b *backend) body(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[path]
}

func newTestAPI(t *testing.T, b *backend) (*Client, *storage.TokenStore, context.Context) {
	t.Helper()
	srv := httptest.NewServer(b.mux)
	t.Cleanup(srv.Close)

	tokens := storage.NewTokenStore(storage.NewMemory())
	main, err := httpclient.New(httpclient.Options{Name: httpclient.Main, BaseURL: srv.URL + "/api", Tokens: tokens})
	require.NoError(t, err)
	auth, err := httpclient.New(httpclient.Options{Name: httpclient.Auth, BaseURL: srv.URL + "/api", Tokens: tokens})
	require.NoError(t, err)

	ctx := storage.WithSessionID(context.Background(), storage.NewSessionID())
	return New(main, auth, tokens), tokens, ctx
}

func TestUnwrapField(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "wrapped", body: `{"count":2,"items":["a","b"]}`, want: []string{"a", "b"}},
		{name: "bare array", body: `["c"]`, want: []string{"c"}},
		{name: "null field falls back", body: `null`, want: nil},
		{name: "empty body", body: ``, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := unwrapField[[]string](json.RawMessage(tt.body), "items")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := unwrapField[[]string](json.RawMessage(`{"items":null}`), "items")
	assert.Error(t, err, "object without usable field cannot decode as a list")
}

func TestJDs(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/jd/create", `{"_id":"jd1","prompt":"Senior Go engineer for payments","status":"queued"}`)
	b.handle("GET /api/jd/getAll", `{"count":1,"jds":[{"_id":"jd1","aiResponse":{"jobTitle":"Go Engineer"}}]}`)
	b.handle("GET /api/jd/get/jd1", `{"_id":"jd1","approvalStatus":"approved"}`)
	b.handle("POST /api/jd/update", `{"_id":"jd1","approvalStatus":"rejected"}`)
	b.handle("POST /api/jd/delete", `{"message":"deleted"}`)
	b.handle("POST /api/jd/createPost", `{"message":"posted"}`)
	c, _, ctx := newTestAPI(t, b)

	jd, err := c.JDs.Create(ctx, types.CreateJDRequest{Prompt: "Senior Go engineer for payments"})
	require.NoError(t, err)
	assert.Equal(t, "jd1", jd.Key())
	assert.Equal(t, types.JDQueued, jd.Status)

	list, err := c.JDs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Go Engineer", list[0].Title())

	got, err := c.JDs.Get(ctx, "jd1")
	require.NoError(t, err)
	assert.True(t, got.CanPost())

	updated, err := c.JDs.SetApproval(ctx, "jd1", types.ApprovalRejected)
	require.NoError(t, err)
	assert.Equal(t, types.ApprovalRejected, updated.ApprovalStatus)
	assert.Equal(t, map[string]any{"id": "jd1", "approvalStatus": "rejected"}, b.body("/api/jd/update"))

	require.NoError(t, c.JDs.Delete(ctx, "jd1"))
	assert.Equal(t, map[string]any{"id": "jd1"}, b.body("/api/jd/delete"))

	require.NoError(t, c.JDs.Post(ctx, "jd1", types.PostJDRequest{Platforms: []string{"linkedin"}}))
	assert.Equal(t, "jd1", b.body("/api/jd/createPost")["id"])
	assert.Equal(t, []any{"linkedin"}, b.body("/api/jd/createPost")["platforms"])
}

func TestResumes(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/rs/shortlist", `{"success":true,"message":"started"}`)
	b.handle("GET /api/rs/getAllCandidates/{jd}", `{"candidates":[{"_id":"c1","name":"Ana"}]}`)
	b.handle("GET /api/rs/getAllShortListedCandidates", `[{"_id":"s1","candidateId":"c1"}]`)
	b.handle("GET /api/rs/getAllShortListedCandidates/{jd}", `{"candidates":[{"_id":"s2","candidateId":{"_id":"c2","name":"Bo"}}]}`)
	c, _, ctx := newTestAPI(t, b)

	msg, err := c.Resumes.Shortlist(ctx, "jd1")
	require.NoError(t, err)
	assert.Equal(t, "started", msg.Message)
	assert.Equal(t, map[string]any{"jdId": "jd1"}, b.body("/api/rs/shortlist"))

	cands, err := c.Resumes.Candidates(ctx, "")
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "Ana", cands[0].Name)

	all, err := c.Resumes.Shortlisted(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c1", all[0].Candidate.ID)
	assert.False(t, all[0].Candidate.Populated())

	forJD, err := c.Resumes.Shortlisted(ctx, "jd1")
	require.NoError(t, err)
	require.Len(t, forJD, 1)
	assert.Equal(t, "Bo", forJD[0].Candidate.Value.Name)

	assert.Contains(t, b.requests, "GET /api/rs/getAllCandidates/all")
	assert.Contains(t, b.requests, "GET /api/rs/getAllShortListedCandidates")
	assert.Contains(t, b.requests, "GET /api/rs/getAllShortListedCandidates/jd1")
}

func TestAssessments(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/ca/init", `{"success":true,"test_id":"t1","status":"pending"}`)
	b.handle("GET /api/ca/test", `{"success":true,"test":{"_id":"t1","questions":[{"question_id":"q1"}]}}`)
	b.handle("GET /api/ca/test/{id}", `{"success":true,"test":{"_id":"t2"}}`)
	b.handle("POST /api/ca/submit", `{"success":true,"score":{"total_score":4,"percentage":80}}`)
	b.handle("GET /api/ca/shortlisted", `{"success":true,"total":1,"shortlisted":[{"_id":"a1","candidate_id":"c1","job_id":"jd1"}]}`)
	b.handle("GET /api/ca/shortlisted/{id}", `{"success":true,"shortlisted":{"_id":"a1","percentage":91.5}}`)
	c, _, ctx := newTestAPI(t, b)

	started, err := c.Assessments.Init(ctx, types.AssessmentInit{CandidateID: "c1", JobID: "jd1", Role: "Go", TestType: types.TestMCQ})
	require.NoError(t, err)
	assert.Equal(t, "t1", started.TestID)

	test, err := c.Assessments.TestForCandidate(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, test.Test)
	assert.Len(t, test.Test.Questions, 1)
	assert.Contains(t, b.requests, "GET /api/ca/test?candidate_id=c1")

	byID, err := c.Assessments.Test(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", byID.Test.Key())

	res, err := c.Assessments.Submit(ctx, types.SubmitAssessmentRequest{
		TestID:    "t1",
		Responses: []types.AnswerRecord{{QuestionID: "q1", Answer: "A"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.Score.Percentage)

	list, err := c.Assessments.Shortlisted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "jd1", list.Shortlisted[0].Job.ID)

	detail, err := c.Assessments.Detail(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 91.5, detail.Shortlisted.Percentage)
}

func TestInitBulk_SettlesEveryItem(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ca/init", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req types.AssessmentInit
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.CandidateID == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"generation failed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"test_id":"t-` + req.CandidateID + `"}`))
	})
	c, _, ctx := newTestAPI(t, &backend{mux: mux})

	inits := []types.AssessmentInit{
		{CandidateID: "c1", JobID: "jd1", Role: "Go"},
		{CandidateID: "bad", JobID: "jd1", Role: "Go"},
		{CandidateID: "c3", JobID: "jd1", Role: "Go"},
	}
	res := c.Assessments.InitBulk(ctx, inits, 2)

	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Results, 3)
	assert.Equal(t, "t-c1", res.Results[0].Response.TestID)
	assert.Equal(t, "generation failed", httpclient.UserMessage(res.Results[1].Err, ""))
	assert.Equal(t, "t-c3", res.Results[2].Response.TestID)
}

func TestAssessmentInits(t *testing.T) {
	jd := types.JobDescription{AIResponse: types.AIResponse{JobTitle: "Go Engineer", Skills: []string{"go", "sql"}}}
	jd.ID = "jd1"
	shortlisted := []types.ShortlistedCandidate{
		{Candidate: types.RefTo[types.Candidate]("c1")},
		{Candidate: types.RefTo[types.Candidate]("c2")},
	}

	inits := AssessmentInits(jd, shortlisted)
	require.Len(t, inits, 2)
	for _, in := range inits {
		assert.Equal(t, "jd1", in.JobID)
		assert.Equal(t, "Go Engineer", in.Role)
		assert.Equal(t, types.TestMCQ, in.TestType)
		assert.NoError(t, in.Validate())
	}
	assert.Equal(t, "c2", inits[1].CandidateID)
}

func TestInterviews(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/is/create", `{"success":true,"scheduled_count":3}`)
	b.handle("GET /api/is/list", `{"success":true,"interviews":[{"_id":"i1","candidate_id":{"_id":"c1","name":"Ana"},"job_id":"jd1","status":"scheduled"}]}`)
	b.handle("PUT /api/is/status/{id}", `{"success":true,"interview":{"_id":"i1","status":"completed"}}`)
	b.handle("POST /api/is/feedback/{id}", `{"success":true,"interview":{"_id":"i1","feedback":{"comments":"solid","rating":4}}}`)
	c, _, ctx := newTestAPI(t, b)

	created, err := c.Interviews.Create(ctx, types.CreateInterviewRequest{JobID: "jd1", Mode: types.ModeOnline, Batch: true})
	require.NoError(t, err)
	assert.Equal(t, 3, created.ScheduledCount)
	assert.Equal(t, true, b.body("/api/is/create")["batch"])
	assert.NotContains(t, b.body("/api/is/create"), "candidate_id")

	list, err := c.Interviews.List(ctx, types.ListInterviewsParams{UserID: "u1", Role: types.RoleCandidate})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].CandidateName())
	assert.Contains(t, b.requests, "GET /api/is/list?role=candidate&user_id=u1")

	iv, err := c.Interviews.UpdateStatus(ctx, "i1", types.InterviewCompleted)
	require.NoError(t, err)
	assert.Equal(t, types.InterviewCompleted, iv.Status)
	assert.Equal(t, map[string]any{"status": "completed"}, b.body("/api/is/status/i1"))

	fb, err := c.Interviews.SubmitFeedback(ctx, "i1", types.SubmitFeedbackRequest{Feedback: "solid", Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Feedback.Rating)
}

func TestOffers(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/oo/create", `{"success":true,"offer":{"_id":"o1","status":"draft"}}`)
	b.handle("GET /api/oo/list", `{"success":true,"offers":[{"_id":"o1","status":"sent"}]}`)
	b.handle("GET /api/oo/{id}", `{"success":true,"offer":{"_id":"o1","salary_offered":{"amount":100}}}`)
	b.handle("PUT /api/oo/status/{id}", `{"success":true,"offer":{"_id":"o1","status":"accepted"}}`)
	b.handle("POST /api/oo/resend/{id}", `{"success":true,"message":"resent"}`)
	b.handle("POST /api/oo/onboarding/create", `{"success":true,"task":{"_id":"k1","task_title":"Laptop"}}`)
	b.handle("GET /api/oo/onboarding/{cid}", `{"success":true,"tasks":[{"_id":"k1"},{"_id":"k2"}]}`)
	c, _, ctx := newTestAPI(t, b)

	offer, err := c.Offers.Create(ctx, types.CreateOfferRequest{CandidateID: "c1", JobID: "jd1", BaseSalary: 100, PositionTitle: "Eng", CandidateEmail: "a@b.co"})
	require.NoError(t, err)
	assert.Equal(t, types.OfferDraft, offer.Status)

	list, err := c.Offers.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].CanResend())

	got, err := c.Offers.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "INR", got.SalaryOffered.CurrencyOrDefault())

	updated, err := c.Offers.UpdateStatus(ctx, "o1", types.OfferAccepted)
	require.NoError(t, err)
	assert.Equal(t, types.OfferAccepted, updated.Status)

	msg, err := c.Offers.Resend(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "resent", msg.Message)

	task, err := c.Offers.CreateOnboardingTask(ctx, types.CreateOnboardingTaskRequest{CandidateID: "c1", OfferID: "o1", TaskTitle: "Laptop", DueDate: "2026-11-01"})
	require.NoError(t, err)
	assert.Equal(t, "Laptop", task.TaskTitle)

	tasks, err := c.Offers.OnboardingTasks(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestAuth(t *testing.T) {
	b := newBackend()
	b.handle("POST /api/auth/login", `{"message":"ok","token":"tok","user":{"_id":"u1","role":"hr"}}`)
	b.handle("POST /api/auth/register", `{"message":"created","token":"tok2","user":{"_id":"u2","role":"candidate"}}`)
	b.handle("GET /api/auth/validate", `{"message":"valid","user":{"_id":"u1","role":"hr"}}`)
	c, tokens, ctx := newTestAPI(t, b)

	resp, err := c.Auth.Login(ctx, types.LoginRequest{Email: "hr@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, types.RoleHR, resp.User.Role)

	reg, err := c.Auth.Register(ctx, types.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1", Role: types.RoleCandidate})
	require.NoError(t, err)
	assert.Equal(t, "u2", reg.User.Key())

	v, err := c.Auth.Validate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", v.User.Key())

	require.NoError(t, tokens.SetToken(ctx, "tok"))
	require.NoError(t, c.Auth.Logout(ctx))
	token, err := tokens.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.False(t, strings.Contains(strings.Join(b.requests, ","), "logout"), "logout makes no HTTP call")
}

func TestEligibleForAssessment(t *testing.T) {
	scoredAt := func(id string, score float64) types.ShortlistedCandidate {
		c := types.ShortlistedCandidate{Candidate: types.RefTo[types.Candidate](id)}
		if score >= 0 {
			c.AIEvaluation = &types.AIEvaluation{Score: score}
		}
		return c
	}
	in := []types.ShortlistedCandidate{
		scoredAt("low", 69.9),
		scoredAt("edge", 70),
		scoredAt("none", -1),
		scoredAt("top", 95),
	}

	got := EligibleForAssessment(in)
	require.Len(t, got, 2)
	assert.Equal(t, "top", got[0].Candidate.ID)
	assert.Equal(t, "edge", got[1].Candidate.ID)
	assert.Len(t, in, 4)
	assert.Equal(t, "low", in[0].Candidate.ID, "input is not modified")
}
