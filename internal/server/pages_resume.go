package server

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/api"
	"github.com/jonathan/recruit-portal/internal/types"
)

const (
	allJDs = "all"

	tabApplied     = "applied"
	tabShortlisted = "shortlisted"
)

type candidatesData struct {
	JDs         []types.JobDescription
	SelectedJD  string
	Tab         string
	Applied     []types.Candidate
	Shortlisted []types.ShortlistedCandidate
	// Profile is the candidate opened with ?profile=<id>, if any.
	Profile *types.Candidate
}

// Specific reports whether a single job description is selected.
func (d candidatesData) Specific() bool {
	return d.SelectedJD != "" && d.SelectedJD != allJDs
}

// Count is the number of rows on the active tab.
func (d candidatesData) Count() int {
	if d.Tab == tabShortlisted {
		return len(d.Shortlisted)
	}
	return len(d.Applied)
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	data := candidatesData{SelectedJD: q.Get("jd"), Tab: q.Get("tab")}
	if data.SelectedJD == "" {
		data.SelectedJD = allJDs
	}
	if data.Tab != tabShortlisted {
		data.Tab = tabApplied
	}
	pd := &pageData{Title: "Candidates"}

	// The JD filter is optional chrome; the page still works without it.
	jds, err := s.api.JDs.List(ctx)
	if err != nil {
		s.log.Warn("failed to load job descriptions for filter", zap.Error(err))
	}
	data.JDs = jds

	if data.Tab == tabShortlisted {
		list, err := s.api.Resumes.Shortlisted(ctx, data.SelectedJD)
		if err != nil {
			s.fetchFailed(w, r, "candidates", pd, err, "Failed to load candidates")
			return
		}
		data.Shortlisted = api.EligibleForAssessment(list)
		data.Profile = findProfile(q.Get("profile"), nil, data.Shortlisted)
	} else {
		list, err := s.api.Resumes.Candidates(ctx, data.SelectedJD)
		if err != nil {
			s.fetchFailed(w, r, "candidates", pd, err, "Failed to load candidates")
			return
		}
		data.Applied = list
		data.Profile = findProfile(q.Get("profile"), data.Applied, nil)
	}
	if s.signedOut(w, r) {
		return
	}

	pd.Data = data
	s.render(w, r, http.StatusOK, "candidates", pd)
}

// findProfile returns the full candidate record for id. Shortlisted rows only
// carry a profile when the backend populated the reference.
func findProfile(id string, applied []types.Candidate, shortlisted []types.ShortlistedCandidate) *types.Candidate {
	if id == "" {
		return nil
	}
	for i := range applied {
		if applied[i].Key() == id {
			return &applied[i]
		}
	}
	for _, sc := range shortlisted {
		if sc.Candidate.ID == id && sc.Candidate.Value != nil {
			c := *sc.Candidate.Value
			return &c
		}
	}
	return nil
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	jd := r.PostForm.Get("jd")
	back := backTo("/dashboard/resume", "jd", jd, "tab", r.PostForm.Get("tab"))
	if jd == "" || jd == allJDs {
		s.setFlash(r.Context(), flashError, "Please select a job description")
		seeOther(w, r, back)
		return
	}

	if _, err := s.api.Resumes.Shortlist(r.Context(), jd); err != nil {
		s.mutationFailed(w, r, err, "Failed to shortlist candidates", back)
		return
	}
	s.setFlash(r.Context(), flashSuccess, "Candidates shortlisting started")
	seeOther(w, r, back)
}

// handleInitAssessments sends an MCQ assessment to every eligible shortlisted
// candidate of the selected job description. Each invitation is independent.
func (s *Server) handleInitAssessments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	jdID := r.PostForm.Get("jd")
	back := backTo("/dashboard/resume", "jd", jdID, "tab", tabShortlisted)

	if jdID == "" || jdID == allJDs {
		s.setFlash(ctx, flashError, "Please select a specific job description")
		seeOther(w, r, back)
		return
	}

	jd, err := s.api.JDs.Get(ctx, jdID)
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to initialize assessments", back)
		return
	}
	shortlisted, err := s.api.Resumes.Shortlisted(ctx, jdID)
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to initialize assessments", back)
		return
	}
	eligible := api.EligibleForAssessment(shortlisted)
	if len(eligible) == 0 {
		s.setFlash(ctx, flashError, "No candidates to send assessments to")
		seeOther(w, r, back)
		return
	}

	res := s.api.Assessments.InitBulk(ctx, api.AssessmentInits(*jd, eligible), api.DefaultBulkLimit)
	if s.signedOut(w, r) {
		return
	}
	for _, item := range res.Results {
		if item.Err != nil {
			s.log.Warn("assessment init failed",
				zap.String("candidate_id", item.Request.CandidateID), zap.Error(item.Err))
		}
	}
	if res.Succeeded == 0 {
		s.setFlash(ctx, flashError, "Failed to initialize assessments")
		seeOther(w, r, back)
		return
	}
	s.setFlash(ctx, flashSuccess, initSummary(res.Succeeded, res.Failed))
	seeOther(w, r, back)
}

func initSummary(ok, failed int) string {
	msg := fmt.Sprintf("Assessment initialized for %d candidate", ok)
	if ok != 1 {
		msg += "s"
	}
	if failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", failed)
	}
	return msg
}
