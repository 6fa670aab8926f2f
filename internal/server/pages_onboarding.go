package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

type onboardingData struct {
	CandidateID string
	Tasks       []types.OnboardingTask
	Done        int
}

func newOnboardingData(candidateID string, tasks []types.OnboardingTask) onboardingData {
	d := onboardingData{CandidateID: candidateID, Tasks: tasks}
	for _, t := range tasks {
		if t.Status == types.TaskCompleted {
			d.Done++
		}
	}
	return d
}

// handleOnboarding shows the task form and, when ?candidate= is set, that
// candidate's tasks.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	candidateID := strings.TrimSpace(r.URL.Query().Get("candidate"))
	f := newForm(nil)
	f.Values.Set("candidate_id", candidateID)
	f.Values.Set("offer_id", r.URL.Query().Get("offer"))
	s.renderOnboarding(w, r, http.StatusOK, candidateID, &pageData{Title: "Onboarding", Form: f})
}

// renderOnboarding loads the task list, if a candidate is selected, and
// renders the onboarding page with pd's form.
func (s *Server) renderOnboarding(w http.ResponseWriter, r *http.Request, status int, candidateID string, pd *pageData) {
	var tasks []types.OnboardingTask
	if candidateID != "" {
		var err error
		tasks, err = s.api.Offers.OnboardingTasks(r.Context(), candidateID)
		if err != nil {
			s.fetchFailed(w, r, "onboarding", pd, err, "Failed to load onboarding tasks")
			return
		}
	}
	pd.Data = newOnboardingData(candidateID, tasks)
	s.render(w, r, status, "onboarding", pd)
}

func (s *Server) handleOnboardingCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := types.CreateOnboardingTaskRequest{
		CandidateID:     strings.TrimSpace(r.PostForm.Get("candidate_id")),
		OfferID:         strings.TrimSpace(r.PostForm.Get("offer_id")),
		TaskTitle:       strings.TrimSpace(r.PostForm.Get("task_title")),
		TaskDescription: strings.TrimSpace(r.PostForm.Get("task_description")),
		DueDate:         strings.TrimSpace(r.PostForm.Get("due_date")),
	}
	f := newForm(r.PostForm)
	pd := &pageData{Title: "Onboarding", Form: f}

	if !f.check(&req) {
		s.renderOnboarding(w, r, http.StatusUnprocessableEntity, req.CandidateID, pd)
		return
	}

	if _, err := s.api.Offers.CreateOnboardingTask(r.Context(), req); err != nil {
		if s.signedOut(w, r) {
			return
		}
		f.Message = httpclient.UserMessage(err, "Failed to create onboarding task")
		s.render(w, r, HTTPStatus(err), "onboarding", &pageData{
			Title: pd.Title, Form: f, Data: newOnboardingData(req.CandidateID, nil),
		})
		return
	}

	s.setFlash(r.Context(), flashSuccess, "Onboarding task created")
	seeOther(w, r, backTo("/dashboard/onboarding", "candidate", req.CandidateID))
}
