package api

import (
	"context"
	"net/url"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Assessments talks to the assessment generation and scoring service.
type Assessments struct {
	c *httpclient.Client
}

// Init generates a test for a candidate.
func (a *Assessments) Init(ctx context.Context, req types.AssessmentInit) (*types.InitResponse, error) {
	var resp types.InitResponse
	if err := a.c.Post(ctx, "/ca/init", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestForCandidate returns the test assigned to a candidate.
func (a *Assessments) TestForCandidate(ctx context.Context, candidateID string) (*types.TestResponse, error) {
	var resp types.TestResponse
	if err := a.c.Get(ctx, "/ca/test", url.Values{"candidate_id": {candidateID}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Test returns a test by id.
func (a *Assessments) Test(ctx context.Context, testID string) (*types.TestResponse, error) {
	var resp types.TestResponse
	if err := a.c.Get(ctx, "/ca/test"+seg(testID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit sends a candidate's answers for scoring.
func (a *Assessments) Submit(ctx context.Context, req types.SubmitAssessmentRequest) (*types.SubmitResponse, error) {
	var resp types.SubmitResponse
	if err := a.c.Post(ctx, "/ca/submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shortlisted lists scored candidates.
func (a *Assessments) Shortlisted(ctx context.Context) (*types.ShortlistedList, error) {
	var resp types.ShortlistedList
	if err := a.c.Get(ctx, "/ca/shortlisted", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detail returns one scored candidate by candidate score id.
func (a *Assessments) Detail(ctx context.Context, id string) (*types.ShortlistedDetail, error) {
	var resp types.ShortlistedDetail
	if err := a.c.Get(ctx, "/ca/shortlisted"+seg(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
