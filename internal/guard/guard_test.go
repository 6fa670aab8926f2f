package guard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/types"
)

var (
	allRoles      = []types.Role{types.RoleAdmin, types.RoleHR, types.RoleCandidate, types.RoleInterviewer, "recruiter"}
	dashboardOnly = []types.Role{types.RoleHR, types.RoleAdmin}
	candidateOnly = []types.Role{types.RoleCandidate}
)

func signedIn(role types.Role) auth.State {
	return auth.State{User: &types.User{Role: role}, Token: "tok", IsAuthenticated: true}
}

func TestDecide_EveryRoleAndRoute(t *testing.T) {
	areas := []struct {
		path    string
		allowed []types.Role
	}{
		{DashboardPath, dashboardOnly},
		{CandidatePath, candidateOnly},
	}

	for _, area := range areas {
		for _, role := range allRoles {
			t.Run(area.path+"/"+string(role), func(t *testing.T) {
				state := signedIn(role)
				d := DecideArea(state, area.path, area.allowed)

				permitted := false
				for _, r := range area.allowed {
					permitted = permitted || r == role
				}
				if permitted {
					assert.Equal(t, Decision{Outcome: Allow}, d)
					return
				}

				require.Equal(t, Redirect, d.Outcome)
				assert.NotEqual(t, area.path, d.Target, "never redirect back to the guarded area")
				want := Fallback(state)
				if want == area.path {
					want = UnauthorizedPath
				}
				assert.Equal(t, want, d.Target)
			})
		}
	}
}

func TestDecide_Unauthenticated(t *testing.T) {
	assert.Equal(t, Decision{Outcome: Redirect, Target: LoginPath}, Decide(auth.State{}, dashboardOnly))
	assert.Equal(t, Decision{Outcome: Redirect, Target: LoginPath},
		Decide(auth.State{IsAuthenticated: true}, dashboardOnly), "authenticated without a user is treated as signed out")
}

func TestDecide_Loading(t *testing.T) {
	assert.Equal(t, Decision{Outcome: Pending}, Decide(auth.State{Loading: true}, dashboardOnly))
}

func TestFallback(t *testing.T) {
	tests := []struct {
		role types.Role
		want string
	}{
		{types.RoleAdmin, DashboardPath},
		{types.RoleHR, DashboardPath},
		{types.RoleCandidate, CandidatePath},
		{types.RoleInterviewer, UnauthorizedPath},
		{"recruiter", UnauthorizedPath},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fallback(signedIn(tt.role)), tt.role)
	}
	assert.Equal(t, UnauthorizedPath, Fallback(auth.State{}))
}

func TestGuardHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var state auth.State
	var seen auth.State
	g := Guard{
		Area:    DashboardPath,
		Allowed: dashboardOnly,
		Resolve: func(*http.Request) (auth.State, error) { return state, nil },
		Metrics: m,
	}
	h := g.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/jd", nil))
		return rec
	}

	state = signedIn(types.RoleHR)
	rec := serve()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.RoleHR, seen.Role())

	state = signedIn(types.RoleCandidate)
	rec = serve()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, CandidatePath, rec.Header().Get("Location"))

	state = auth.State{}
	rec = serve()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))

	state = auth.State{Loading: true}
	rec = serve()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	count, err := testutil.GatherAndCount(reg, "recruit_guard_decisions_total")
	require.NoError(t, err)
	assert.Equal(t, 4, count, "allow, redirect_fallback, redirect_login and pending")
}

func TestGuardHandler_ResolveError(t *testing.T) {
	h := Middleware(CandidatePath, func(*http.Request) (auth.State, error) {
		return auth.State{}, errors.New("storage down")
	}, candidateOnly...)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not run")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/candidate", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
