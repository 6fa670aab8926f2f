package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Interviews talks to the interview scheduling service.
type Interviews struct {
	c *httpclient.Client
}

// Create schedules one interview, or every shortlisted candidate of a job
// when req.Batch is set.
func (a *Interviews) Create(ctx context.Context, req types.CreateInterviewRequest) (*types.CreateInterviewResponse, error) {
	var resp types.CreateInterviewResponse
	if err := a.c.Post(ctx, "/is/create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns interviews visible to the given user and role.
func (a *Interviews) List(ctx context.Context, params types.ListInterviewsParams) ([]types.Interview, error) {
	query := url.Values{}
	if params.UserID != "" {
		query.Set("user_id", params.UserID)
	}
	if params.Role != "" {
		query.Set("role", string(params.Role))
	}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}

	var raw json.RawMessage
	if err := a.c.Get(ctx, "/is/list", query, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.Interview](raw, "interviews")
}

// UpdateStatus moves an interview to a new status.
func (a *Interviews) UpdateStatus(ctx context.Context, id string, status types.InterviewStatus) (*types.Interview, error) {
	var resp types.InterviewResponse
	req := types.UpdateInterviewStatusRequest{Status: status}
	if err := a.c.Put(ctx, "/is/status"+seg(id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Interview, nil
}

// SubmitFeedback records interviewer feedback.
func (a *Interviews) SubmitFeedback(ctx context.Context, id string, req types.SubmitFeedbackRequest) (*types.Interview, error) {
	var resp types.InterviewResponse
	if err := a.c.Post(ctx, "/is/feedback"+seg(id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Interview, nil
}
