package api

import (
	"cmp"
	"context"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/recruit-portal/internal/types"
)

// DefaultBulkLimit bounds concurrent calls in InitBulk.
const DefaultBulkLimit = 4

// InitResult is the outcome of one assessment initialisation.
type InitResult struct {
	Request  types.AssessmentInit
	Response *types.InitResponse
	Err      error
}

// BulkResult collects every outcome; one failure never cancels the others.
type BulkResult struct {
	Results   []InitResult
	Succeeded int
	Failed    int
}

// InitBulk initialises assessments for many candidates concurrently.
func (a *Assessments) InitBulk(ctx context.Context, inits []types.AssessmentInit, limit int) BulkResult {
	if limit <= 0 {
		limit = DefaultBulkLimit
	}

	results := make([]InitResult, len(inits))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, req := range inits {
		g.Go(func() error {
			resp, err := a.Init(ctx, req)
			results[i] = InitResult{Request: req, Response: resp, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := BulkResult{Results: results}
	for _, r := range results {
		if r.Err != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out
}

// AssessmentInits builds one MCQ init per shortlisted candidate of jd.
func AssessmentInits(jd types.JobDescription, candidates []types.ShortlistedCandidate) []types.AssessmentInit {
	inits := make([]types.AssessmentInit, 0, len(candidates))
	for _, c := range candidates {
		inits = append(inits, types.AssessmentInit{
			CandidateID: c.Candidate.ID,
			JobID:       jd.Key(),
			Role:        jd.AIResponse.JobTitle,
			Skills:      jd.AIResponse.Skills,
			TestType:    types.TestMCQ,
		})
	}
	return inits
}

// EligibleForAssessment keeps candidates scoring at least
// types.ShortlistThreshold, best first.
func EligibleForAssessment(candidates []types.ShortlistedCandidate) []types.ShortlistedCandidate {
	eligible := slices.DeleteFunc(slices.Clone(candidates), func(c types.ShortlistedCandidate) bool {
		return c.Score() < types.ShortlistThreshold
	})
	slices.SortStableFunc(eligible, func(a, b types.ShortlistedCandidate) int {
		return cmp.Compare(b.Score(), a.Score())
	})
	return eligible
}
