package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// jobPlatforms are the boards a description can be posted to.
var jobPlatforms = []string{"LinkedIn", "Indeed", "Naukri", "Glassdoor"}

type jdListData struct {
	JDs       []types.JobDescription
	Platforms []string
	Filter    types.ApprovalStatus
	// Counts is keyed by approval status.
	Counts map[string]int
}

func (s *Server) handleJDList(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "Job Descriptions"}
	jds, err := s.api.JDs.List(r.Context())
	if err != nil {
		s.fetchFailed(w, r, "jd_list", pd, err, "Failed to load job descriptions")
		return
	}

	data := jdListData{
		Platforms: jobPlatforms,
		Filter:    types.ApprovalStatus(r.URL.Query().Get("status")),
		Counts:    make(map[string]int),
	}
	for _, jd := range jds {
		data.Counts[string(jd.ApprovalStatus)]++
		if data.Filter == "" || jd.ApprovalStatus == data.Filter {
			data.JDs = append(data.JDs, jd)
		}
	}
	pd.Data = data
	s.render(w, r, http.StatusOK, "jd_list", pd)
}

func (s *Server) handleJDCreateForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "jd_create", &pageData{Title: "Create Job Description"})
}

func (s *Server) handleJDCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := types.CreateJDRequest{Prompt: strings.TrimSpace(r.PostForm.Get("prompt"))}
	f := newForm(r.PostForm)
	pd := &pageData{Title: "Create Job Description", Form: f}

	if !f.check(&req) {
		s.render(w, r, http.StatusUnprocessableEntity, "jd_create", pd)
		return
	}

	jd, err := s.api.JDs.Create(r.Context(), req)
	if err != nil {
		if s.signedOut(w, r) {
			return
		}
		s.log.Warn("job description generation failed", zap.Error(err))
		f.Message = httpclient.UserMessage(err, "Failed to generate job description")
		s.render(w, r, HTTPStatus(err), "jd_create", pd)
		return
	}

	s.log.Info("job description generated", zap.String("jd_id", jd.Key()))
	s.setFlash(r.Context(), flashSuccess, "Job description generated successfully!")
	seeOther(w, r, "/dashboard/jd")
}

// handleJDApproval returns the handler for the approve or reject action.
func (s *Server) handleJDApproval(status types.ApprovalStatus) http.HandlerFunc {
	ok, failed := "JD approved successfully", "Failed to approve JD"
	if status == types.ApprovalRejected {
		ok, failed = "JD rejected", "Failed to reject JD"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		back := backTo("/dashboard/jd", "status", r.URL.Query().Get("status"))
		if _, err := s.api.JDs.SetApproval(r.Context(), id, status); err != nil {
			s.mutationFailed(w, r, err, failed, back)
			return
		}
		s.setFlash(r.Context(), flashSuccess, ok)
		seeOther(w, r, back)
	}
}

func (s *Server) handleJDDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.api.JDs.Delete(r.Context(), id); err != nil {
		s.mutationFailed(w, r, err, "Failed to delete JD", "/dashboard/jd")
		return
	}
	s.setFlash(r.Context(), flashSuccess, "JD deleted successfully")
	seeOther(w, r, "/dashboard/jd")
}

func (s *Server) handleJDPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	req := types.PostJDRequest{Platforms: r.PostForm["platform"]}
	if err := req.Validate(); err != nil {
		s.setFlash(r.Context(), flashError, "Select at least one platform")
		seeOther(w, r, "/dashboard/jd")
		return
	}
	if err := s.api.JDs.Post(r.Context(), id, req); err != nil {
		s.mutationFailed(w, r, err, "Failed to post JD", "/dashboard/jd")
		return
	}
	s.setFlash(r.Context(), flashSuccess, "JD posted to "+strings.Join(req.Platforms, ", "))
	seeOther(w, r, "/dashboard/jd")
}
