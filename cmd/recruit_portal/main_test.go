package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-portal/internal/types"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	_ = godotenv.Load()

	os.Exit(m.Run())
}

type backendCall struct {
	Method string
	Path   string
	Body   string
}

// fakeBackend is an httptest server with per-route handlers and a call log.
type fakeBackend struct {
	*httptest.Server
	mux *http.ServeMux

	mu    sync.Mutex
	calls []backendCall
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{mux: http.NewServeMux()}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.calls = append(b.calls, backendCall{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		b.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *fakeBackend) respond(pattern string, status int, v any) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v) //nolint:errcheck
	})
}

func (b *fakeBackend) callsTo(path string) []backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backendCall
	for _, c := range b.calls {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// cli runs commands in-process against two fake backends with a private
// token file.
type cli struct {
	main *fakeBackend
	auth *fakeBackend
	dir  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	c := &cli{main: newFakeBackend(t), auth: newFakeBackend(t), dir: t.TempDir()}
	t.Setenv("RECRUIT_MAIN_API_URL", c.main.URL)
	t.Setenv("RECRUIT_AUTH_API_URL", c.auth.URL)
	t.Setenv("RECRUIT_TOKEN_FILE", filepath.Join(c.dir, "storage.json"))
	t.Setenv("RECRUIT_LOG_LEVEL", "info")
	t.Setenv("RECRUIT_PORT", "8080")
	return c
}

type result struct {
	out string
	err string
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (result, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err := rootCmd.Execute()
	return result{out: out.String(), err: errOut.String()}, err
}

// loginAs signs the CLI in as a user with the given role.
func (c *cli) loginAs(t *testing.T, id string, role types.Role) {
	t.Helper()
	c.auth.respond("POST /auth/login", http.StatusOK, types.AuthResponse{
		Token: "token-" + id,
		User:  &types.User{IDs: types.IDs{ID: id}, Name: "User " + id, Email: id + "@example.com", Role: role},
	})
	_, err := c.run(t, "", "login", "--email", id+"@example.com", "--password", "secret")
	require.NoError(t, err)
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestLogin_WhoamiLogout(t *testing.T) {
	c := newCLI(t)
	c.auth.respond("POST /auth/login", http.StatusOK, types.AuthResponse{
		Token: "tok",
		User:  &types.User{IDs: types.IDs{ID: "u1"}, Name: "Hana", Email: "hana@example.com", Role: types.RoleHR},
	})

	res, err := c.run(t, "", "login", "--email", "hana@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Signed in as Hana (hr)")

	res, err = c.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, res.out, "hana@example.com")
	assert.Empty(t, c.auth.callsTo("/auth/validate"), "cached user is used")

	res, err = c.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, res.out, "You have been signed out.")

	_, err = c.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestLogin_ReadsPasswordFromStdin(t *testing.T) {
	c := newCLI(t)
	c.auth.respond("POST /auth/login", http.StatusOK, types.AuthResponse{
		Token: "tok",
		User:  &types.User{IDs: types.IDs{ID: "u1"}, Email: "hana@example.com", Role: types.RoleHR},
	})

	res, err := c.run(t, "s3cret\n", "login", "--email", "hana@example.com")
	require.NoError(t, err)
	assert.Contains(t, res.err, "Password: ")

	calls := c.auth.callsTo("/auth/login")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"hana@example.com","password":"s3cret"}`, calls[0].Body)
}

func TestLogin_Rejected(t *testing.T) {
	c := newCLI(t)
	c.auth.respond("POST /auth/login", http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})

	_, err := c.run(t, "", "login", "--email", "hana@example.com", "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestRegister_PasswordMismatch(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "one-password\nanother-one\n", "register", "--name", "Asha", "--email", "asha@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
	assert.Empty(t, c.auth.callsTo("/auth/register"))
}

func TestJDList_FiltersByStatus(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("GET /jd/getAll", http.StatusOK, types.JDList{JDs: []types.JobDescription{
		{IDs: types.IDs{ID: "jd1"}, AIResponse: types.AIResponse{JobTitle: "Backend Engineer"}, ApprovalStatus: types.ApprovalApproved},
		{IDs: types.IDs{ID: "jd2"}, AIResponse: types.AIResponse{JobTitle: "Data Analyst"}, ApprovalStatus: types.ApprovalPending},
	}})

	res, err := c.run(t, "", "jd", "list", "--status", "approved")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Backend Engineer")
	assert.NotContains(t, res.out, "Data Analyst")

	_, err = c.run(t, "", "jd", "list", "--status", "archived")
	assert.Error(t, err)
}

func TestJDCreate_ShortPrompt(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)

	_, err := c.run(t, "", "jd", "create", "--prompt", "too short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 20 characters")
	assert.Empty(t, c.main.callsTo("/jd/create"))
}

func TestJDApprove(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("POST /jd/update", http.StatusOK, types.JobDescription{IDs: types.IDs{ID: "jd1"}})

	res, err := c.run(t, "", "jd", "approve", "jd1")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Job description jd1 approved")

	calls := c.main.callsTo("/jd/update")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"id":"jd1","approvalStatus":"approved"}`, calls[0].Body)
}

func TestJDPost_RequiresPlatform(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)

	_, err := c.run(t, "", "jd", "post", "jd1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--platform")
}

func TestHRCommands_RejectCandidates(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "c1", types.RoleCandidate)

	_, err := c.run(t, "", "jd", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available to the candidate role")
	assert.Empty(t, c.main.callsTo("/jd/getAll"))
}

func TestUnauthorized_ClearsTokenAndPrintsHint(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("GET /oo/list", http.StatusUnauthorized, map[string]string{"message": "jwt expired"})

	res, err := c.run(t, "", "offers", "list")
	require.Error(t, err)
	assert.Contains(t, res.err, "Run `recruit_portal login` to sign in again.")

	_, err = c.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestAssessmentsInit_OnlyEligibleCandidates(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("GET /jd/get/jd1", http.StatusOK, types.JobDescription{
		IDs:        types.IDs{ID: "jd1"},
		AIResponse: types.AIResponse{JobTitle: "Backend Engineer", Skills: []string{"Go"}},
	})
	c.main.respond("GET /rs/getAllShortListedCandidates/jd1", http.StatusOK, map[string]any{
		"candidates": []types.ShortlistedCandidate{
			{Candidate: types.Ref[types.Candidate]{ID: "c1"}, AIEvaluation: &types.AIEvaluation{Score: 90}},
			{Candidate: types.Ref[types.Candidate]{ID: "c2"}, AIEvaluation: &types.AIEvaluation{Score: 50}},
			{Candidate: types.Ref[types.Candidate]{ID: "c3"}, AIEvaluation: &types.AIEvaluation{Score: 75}},
		},
	})
	c.main.respond("POST /ca/init", http.StatusOK, types.InitResponse{Success: true, TestID: "t-new"})

	res, err := c.run(t, "", "assessments", "init", "jd1")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Assessment initialized for 2 candidate(s), 0 failed")
	assert.Contains(t, res.out, "✓ c1: test t-new")
	assert.NotContains(t, res.out, "c2")
	assert.Len(t, c.main.callsTo("/ca/init"), 2)
}

func TestAssessmentsExport_WritesWorkbook(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("GET /ca/shortlisted", http.StatusOK, types.ShortlistedList{Success: true, Shortlisted: []types.AssessmentShortlisted{
		{IDs: types.IDs{ID: "s1"}, Candidate: types.Ref[types.Candidate]{Value: &types.Candidate{Name: "Asha Rao"}}, Percentage: 88},
	}})

	out := t.TempDir()
	res, err := c.run(t, "", "assessments", "export", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, res.out, "Exported 1 assessment(s)")

	matches, err := filepath.Glob(filepath.Join(out, "assessments_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestOffersResend_OnlySentOffers(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("GET /oo/o1", http.StatusOK, map[string]any{"offer": types.Offer{IDs: types.IDs{ID: "o1"}, Status: types.OfferAccepted}})

	_, err := c.run(t, "", "offers", "resend", "o1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only sent offers can be resent")
	assert.Empty(t, c.main.callsTo("/oo/resend/o1"))
}

func TestInterviewsSchedule_Batch(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "hr1", types.RoleHR)
	c.main.respond("POST /is/create", http.StatusOK, types.CreateInterviewResponse{Success: true, ScheduledCount: 3})

	res, err := c.run(t, "", "interviews", "schedule", "--job", "jd1", "--batch", "--candidate", "ignored")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Scheduled 3 interview(s)")

	calls := c.main.callsTo("/is/create")
	require.Len(t, calls, 1)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(calls[0].Body), &body))
	assert.Equal(t, "jd1", body["job_id"])
	assert.Equal(t, true, body["batch"])
	assert.Equal(t, "online", body["mode"])
	assert.EqualValues(t, 60, body["duration_minutes"])
	assert.NotContains(t, body, "candidate_id")
}

func TestOnboardingList_CandidateSeesOnlyOwnTasks(t *testing.T) {
	c := newCLI(t)
	c.loginAs(t, "c1", types.RoleCandidate)
	c.main.respond("GET /oo/onboarding/c1", http.StatusOK, types.TaskList{Tasks: []types.OnboardingTask{{TaskTitle: "Sign NDA", DueDate: "2025-04-01"}}})

	res, err := c.run(t, "", "onboarding", "list", "c1")
	require.NoError(t, err)
	assert.Contains(t, res.out, "Sign NDA")

	_, err = c.run(t, "", "onboarding", "list", "c2")
	assert.Error(t, err)
}
