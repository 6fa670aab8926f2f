package server

import (
	"context"
	"net/http"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// pendingAction is a prompt on the candidate home page.
type pendingAction struct {
	Text  string
	Label string
	URL   string
}

type candidateHome struct {
	Tests      stat
	Interviews stat
	Offers     stat
	Tasks      stat
	Actions    []pendingAction
	Partial    bool
}

// candidateID is the signed-in candidate's identifier in the backends.
func candidateID(r *http.Request) string {
	st, ok := auth.FromContext(r.Context())
	if !ok || st.User == nil {
		return ""
	}
	return st.User.Key()
}

// assignedTest returns the candidate's test, or nil when none is assigned.
func (s *Server) assignedTest(ctx context.Context, uid string) (*types.Assessment, error) {
	resp, err := s.api.Assessments.TestForCandidate(ctx, uid)
	if err != nil {
		if httpclient.StatusCode(err) == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Test, nil
}

// candidateOffers keeps the offers addressed to uid.
func (s *Server) candidateOffers(ctx context.Context, uid string) ([]types.Offer, error) {
	all, err := s.api.Offers.List(ctx)
	if err != nil {
		return nil, err
	}
	var mine []types.Offer
	for _, o := range all {
		if o.Candidate.ID == uid {
			mine = append(mine, o)
		}
	}
	return mine, nil
}

func (s *Server) handleCandidateHome(w http.ResponseWriter, r *http.Request) {
	uid := candidateID(r)
	pd := &pageData{Title: "My Dashboard"}

	var (
		home   candidateHome
		test   *types.Assessment
		offers []types.Offer
	)
	loaders := []statLoader{
		{name: "tests", dst: &home.Tests, load: func(ctx context.Context) (int, error) {
			t, err := s.assignedTest(ctx, uid)
			if err != nil || t == nil {
				return 0, err
			}
			test = t
			return 1, nil
		}},
		{name: "interviews", dst: &home.Interviews, load: func(ctx context.Context) (int, error) {
			list, err := s.api.Interviews.List(ctx, types.ListInterviewsParams{
				UserID: uid, Role: types.RoleCandidate, Status: types.InterviewScheduled,
			})
			return len(list), err
		}},
		{name: "offers", dst: &home.Offers, load: func(ctx context.Context) (int, error) {
			list, err := s.candidateOffers(ctx, uid)
			offers = list
			return len(list), err
		}},
		{name: "tasks", dst: &home.Tasks, load: func(ctx context.Context) (int, error) {
			list, err := s.api.Offers.OnboardingTasks(ctx, uid)
			return len(list), err
		}},
	}

	failed, err := s.loadStats(r.Context(), loaders)
	if failed == len(loaders) {
		s.fetchFailed(w, r, "candidate_home", pd, err, "Failed to load your dashboard")
		return
	}
	if s.signedOut(w, r) {
		return
	}

	if test != nil && (test.TestStatus == "" || test.TestStatus == types.TestPending || test.TestStatus == types.TestInProgress) {
		home.Actions = append(home.Actions, pendingAction{
			Text:  "Complete your " + test.TestType + " assessment",
			Label: "Start Test",
			URL:   "/candidate/tests/" + test.Key(),
		})
	}
	for _, o := range offers {
		if o.Status == types.OfferSent {
			home.Actions = append(home.Actions, pendingAction{
				Text:  "Review and respond to your offer for " + o.JobTitle(),
				Label: "View Offer",
				URL:   "/candidate/offers",
			})
		}
	}
	home.Partial = failed > 0
	pd.Data = home
	s.render(w, r, http.StatusOK, "candidate_home", pd)
}

func (s *Server) handleCandidateTests(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "My Tests"}
	test, err := s.assignedTest(r.Context(), candidateID(r))
	if err != nil {
		s.fetchFailed(w, r, "candidate_tests", pd, err, "Failed to load your tests")
		return
	}
	var tests []types.Assessment
	if test != nil {
		tests = append(tests, test.CandidateView())
	}
	pd.Data = tests
	s.render(w, r, http.StatusOK, "candidate_tests", pd)
}

func (s *Server) handleCandidateInterviews(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "My Interviews"}
	list, err := s.api.Interviews.List(r.Context(), types.ListInterviewsParams{
		UserID: candidateID(r),
		Role:   types.RoleCandidate,
	})
	if err != nil {
		s.fetchFailed(w, r, "candidate_interviews", pd, err, "Failed to load interviews")
		return
	}
	pd.Data = list
	s.render(w, r, http.StatusOK, "candidate_interviews", pd)
}

func (s *Server) handleCandidateOffers(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "My Offers"}
	list, err := s.candidateOffers(r.Context(), candidateID(r))
	if err != nil {
		s.fetchFailed(w, r, "candidate_offers", pd, err, "Failed to load offers")
		return
	}
	pd.Data = list
	s.render(w, r, http.StatusOK, "candidate_offers", pd)
}

func (s *Server) handleCandidateOnboarding(w http.ResponseWriter, r *http.Request) {
	uid := candidateID(r)
	pd := &pageData{Title: "Onboarding"}
	tasks, err := s.api.Offers.OnboardingTasks(r.Context(), uid)
	if err != nil {
		s.fetchFailed(w, r, "candidate_onboarding", pd, err, "Failed to load onboarding tasks")
		return
	}
	pd.Data = newOnboardingData(uid, tasks)
	s.render(w, r, http.StatusOK, "candidate_onboarding", pd)
}
