package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/recruit-portal/internal/types"
)

type interviewsData struct {
	Interviews []types.Interview
	Statuses   []types.InterviewStatus
	Filter     types.InterviewStatus
}

func (s *Server) handleInterviews(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "Interview Schedule"}
	filter := types.InterviewStatus(r.URL.Query().Get("status"))
	if !filter.IsKnown() {
		filter = ""
	}

	list, err := s.api.Interviews.List(r.Context(), types.ListInterviewsParams{
		Role:   types.RoleInterviewer,
		Status: filter,
	})
	if err != nil {
		s.fetchFailed(w, r, "interviews", pd, err, "Failed to load interviews")
		return
	}
	pd.Data = interviewsData{Interviews: list, Statuses: types.InterviewStatuses, Filter: filter}
	s.render(w, r, http.StatusOK, "interviews", pd)
}

func (s *Server) handleInterviewStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	back := backTo("/dashboard/interview", "status", r.PostForm.Get("filter"))

	req := types.UpdateInterviewStatusRequest{Status: types.InterviewStatus(r.PostForm.Get("status"))}
	if err := req.Validate(); err != nil {
		s.setFlash(r.Context(), flashError, "Unknown interview status")
		seeOther(w, r, back)
		return
	}
	if _, err := s.api.Interviews.UpdateStatus(r.Context(), id, req.Status); err != nil {
		s.mutationFailed(w, r, err, "Failed to update status", back)
		return
	}
	s.setFlash(r.Context(), flashSuccess, "Interview status updated")
	seeOther(w, r, back)
}

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	back := backTo("/dashboard/interview", "status", r.PostForm.Get("filter"))

	rating, _ := strconv.Atoi(r.PostForm.Get("rating"))
	req := types.SubmitFeedbackRequest{
		Feedback: strings.TrimSpace(r.PostForm.Get("feedback")),
		Rating:   rating,
	}
	if err := req.Validate(); err != nil {
		s.setFlash(r.Context(), flashError, "Feedback needs a comment and a rating from 1 to 5")
		seeOther(w, r, back)
		return
	}
	if _, err := s.api.Interviews.SubmitFeedback(r.Context(), id, req); err != nil {
		s.mutationFailed(w, r, err, "Failed to submit feedback", back)
		return
	}
	s.setFlash(r.Context(), flashSuccess, "Feedback submitted")
	seeOther(w, r, back)
}
