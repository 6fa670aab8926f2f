package api

import (
	"context"
	"encoding/json"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Resumes talks to the resume screening service.
type Resumes struct {
	c *httpclient.Client
}

// Shortlist starts screening the applicants of a job description.
func (a *Resumes) Shortlist(ctx context.Context, jdID string) (*types.MessageResponse, error) {
	var resp types.MessageResponse
	if err := a.c.Post(ctx, "/rs/shortlist", types.ShortlistRequest{JDID: jdID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Candidates lists applicants for a job description, or for all when jdID is "".
func (a *Resumes) Candidates(ctx context.Context, jdID string) ([]types.Candidate, error) {
	if jdID == "" {
		jdID = "all"
	}
	var raw json.RawMessage
	if err := a.c.Get(ctx, "/rs/getAllCandidates"+seg(jdID), nil, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.Candidate](raw, "candidates")
}

// Shortlisted lists screened candidates for a job description, or for all when jdID is "".
func (a *Resumes) Shortlisted(ctx context.Context, jdID string) ([]types.ShortlistedCandidate, error) {
	path := "/rs/getAllShortListedCandidates"
	if jdID != "" {
		path += seg(jdID)
	}
	var raw json.RawMessage
	if err := a.c.Get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.ShortlistedCandidate](raw, "candidates")
}
