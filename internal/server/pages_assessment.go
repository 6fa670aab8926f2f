package server

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/report"
	"github.com/jonathan/recruit-portal/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type assessmentsData struct {
	Items       []types.AssessmentShortlisted
	Recommended int
	Below       int
	Jobs        int
	// JobID is the job the "schedule all" action applies to.
	JobID string
}

// BelowCutoff is the percentage under which a result is flagged.
const BelowCutoff = 70

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	pd := &pageData{Title: "Candidate Assessments"}
	list, err := s.api.Assessments.Shortlisted(r.Context())
	if err != nil {
		s.fetchFailed(w, r, "assessments", pd, err, "Failed to load assessments")
		return
	}

	data := assessmentsData{Items: list.Shortlisted}
	jobs := make(map[string]struct{})
	for _, a := range list.Shortlisted {
		if a.Recommendation().Positive() {
			data.Recommended++
		}
		if a.Percentage > 0 && a.Percentage < BelowCutoff {
			data.Below++
		}
		if a.Job.ID != "" {
			jobs[a.Job.ID] = struct{}{}
			if data.JobID == "" {
				data.JobID = a.Job.ID
			}
		}
	}
	data.Jobs = len(jobs)
	pd.Data = data
	s.render(w, r, http.StatusOK, "assessments", pd)
}

// loadAssessment fetches one scored assessment, mapping an empty envelope to
// ErrNotFound.
func (s *Server) loadAssessment(r *http.Request, id string) (*types.AssessmentShortlisted, error) {
	detail, err := s.api.Assessments.Detail(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if detail.Shortlisted == nil {
		return nil, &ErrNotFound{What: "assessment", ID: id}
	}
	return detail.Shortlisted, nil
}

func (s *Server) handleAssessmentDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pd := &pageData{Title: "Assessment Detail"}
	a, err := s.loadAssessment(r, id)
	if err != nil {
		msg := "Failed to load assessment details"
		if HTTPStatus(err) == http.StatusNotFound {
			msg = "Assessment not found"
		}
		s.fetchFailed(w, r, "assessment_detail", pd, err, msg)
		return
	}
	if name := a.Profile().Name; name != "" {
		pd.Title = name
	}
	pd.Data = a
	s.render(w, r, http.StatusOK, "assessment_detail", pd)
}

// handleAssessmentReport serves the plain-text report as a download.
func (s *Server) handleAssessmentReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.loadAssessment(r, id)
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to generate report", "/dashboard/assessment/"+id)
		return
	}

	now := s.clock.Now()
	body := report.AssessmentReport(*a, now)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(report.ReportFilename(a.Profile().Name, now)))
	w.Header().Set("Content-Length", fmt.Sprint(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body)) //nolint:errcheck
}

// handleAssessmentExport serves every scored assessment as a ranked workbook.
func (s *Server) handleAssessmentExport(w http.ResponseWriter, r *http.Request) {
	list, err := s.api.Assessments.Shortlisted(r.Context())
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to export assessments", "/dashboard/assessment")
		return
	}

	now := s.clock.Now()
	var buf bytes.Buffer
	if err := report.WriteShortlisted(&buf, list.Shortlisted, now); err != nil {
		s.log.Error("failed to build workbook", zap.Error(err))
		s.setFlash(r.Context(), flashError, "Failed to export assessments")
		seeOther(w, r, "/dashboard/assessment")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(report.ExportFilename(now)))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck
}

// handleScheduleInterviews schedules one candidate, or every shortlisted
// candidate of the job when batch is set.
func (s *Server) handleScheduleInterviews(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	batch := r.PostForm.Get("batch") == "true"
	req := types.CreateInterviewRequest{
		JobID:          strings.TrimSpace(r.PostForm.Get("job_id")),
		InterviewerIDs: []string{},
		Mode:           types.ModeOnline,
		Batch:          batch,
	}
	if !batch {
		req.CandidateID = strings.TrimSpace(r.PostForm.Get("candidate_id"))
	}
	back := "/dashboard/assessment"

	if err := req.Validate(); err != nil {
		msg := "Failed to schedule interviews"
		if req.JobID == "" {
			msg = "Job ID not found for the selected candidates"
		}
		s.setFlash(r.Context(), flashError, msg)
		seeOther(w, r, back)
		return
	}

	resp, err := s.api.Interviews.Create(r.Context(), req)
	if err != nil {
		s.mutationFailed(w, r, err, "Failed to schedule interviews", back)
		return
	}
	if batch {
		s.setFlash(r.Context(), flashSuccess, fmt.Sprintf("%d interview(s) scheduled successfully!", resp.ScheduledCount))
	} else {
		s.setFlash(r.Context(), flashSuccess, "Interview scheduled successfully!")
	}
	seeOther(w, r, back)
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
