package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/recruit-portal/internal/types"
)

// stat is one dashboard figure. OK is false when its source failed to load.
type stat struct {
	Value int
	OK    bool
}

// Display renders the figure, or a dash when it is unavailable.
func (s stat) Display() string {
	if !s.OK {
		return "—"
	}
	return strconv.Itoa(s.Value)
}

type pipelineStage struct {
	Name  string
	Count stat
}

type overview struct {
	ActiveJobs           stat
	Candidates           stat
	PendingAssessments   stat
	ScheduledInterviews  stat
	RecommendedCandidate stat
	Pipeline             []pipelineStage
	Partial              bool
}

// statLoader fetches one figure.
type statLoader struct {
	name string
	dst  *stat
	load func(ctx context.Context) (int, error)
}

// loadStats runs every loader concurrently and waits for all of them. A
// failed loader leaves its stat unavailable; it never cancels the others.
func (s *Server) loadStats(ctx context.Context, loaders []statLoader) (failed int, firstErr error) {
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(4)
	for _, l := range loaders {
		g.Go(func() error {
			n, err := l.load(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr = err
				}
				s.log.Warn("dashboard figure unavailable", zap.String("stat", l.name), zap.Error(err))
				return nil
			}
			*l.dst = stat{Value: n, OK: true}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // loaders never return errors
	return failed, firstErr
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pd := &pageData{Title: "Dashboard Overview"}

	var (
		ov         overview
		screening  stat
		offers     stat
		assessment stat
	)
	loaders := []statLoader{
		{name: "jobs", dst: &ov.ActiveJobs, load: func(ctx context.Context) (int, error) {
			jds, err := s.api.JDs.List(ctx)
			if err != nil {
				return 0, err
			}
			n := 0
			for _, jd := range jds {
				if jd.ApprovalStatus == types.ApprovalApproved {
					n++
				}
			}
			return n, nil
		}},
		{name: "candidates", dst: &ov.Candidates, load: func(ctx context.Context) (int, error) {
			cands, err := s.api.Resumes.Candidates(ctx, "")
			if err != nil {
				return 0, err
			}
			n := 0
			for _, c := range cands {
				if c.Status == "" || c.Status == types.CandidateNew || c.Status == types.CandidateScreening {
					n++
				}
			}
			screening = stat{Value: n, OK: true}
			return len(cands), nil
		}},
		{name: "assessments", dst: &assessment, load: func(ctx context.Context) (int, error) {
			list, err := s.api.Assessments.Shortlisted(ctx)
			if err != nil {
				return 0, err
			}
			rec := 0
			for _, a := range list.Shortlisted {
				if a.Recommendation().Positive() {
					rec++
				}
			}
			ov.RecommendedCandidate = stat{Value: rec, OK: true}
			return len(list.Shortlisted), nil
		}},
		{name: "interviews", dst: &ov.ScheduledInterviews, load: func(ctx context.Context) (int, error) {
			list, err := s.api.Interviews.List(ctx, types.ListInterviewsParams{Status: types.InterviewScheduled})
			return len(list), err
		}},
		{name: "offers", dst: &offers, load: func(ctx context.Context) (int, error) {
			list, err := s.api.Offers.List(ctx)
			return len(list), err
		}},
	}

	failed, err := s.loadStats(ctx, loaders)
	if failed == len(loaders) {
		s.fetchFailed(w, r, "overview", pd, err, "Failed to load dashboard")
		return
	}
	if s.signedOut(w, r) {
		return
	}

	ov.PendingAssessments = assessment
	ov.Partial = failed > 0
	ov.Pipeline = []pipelineStage{
		{Name: "Screening", Count: screening},
		{Name: "Assessment", Count: assessment},
		{Name: "Interview", Count: ov.ScheduledInterviews},
		{Name: "Offer", Count: offers},
	}
	pd.Data = ov
	s.render(w, r, http.StatusOK, "overview", pd)
}
