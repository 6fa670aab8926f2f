package api

import (
	"context"
	"encoding/json"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// JDs talks to the job description generation service.
type JDs struct {
	c *httpclient.Client
}

// Create requests a new AI-generated job description.
func (a *JDs) Create(ctx context.Context, req types.CreateJDRequest) (*types.JobDescription, error) {
	var jd types.JobDescription
	if err := a.c.Post(ctx, "/jd/create", req, &jd); err != nil {
		return nil, err
	}
	return &jd, nil
}

// List returns every job description.
func (a *JDs) List(ctx context.Context) ([]types.JobDescription, error) {
	var raw json.RawMessage
	if err := a.c.Get(ctx, "/jd/getAll", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.JobDescription](raw, "jds")
}

// Get returns one job description.
func (a *JDs) Get(ctx context.Context, id string) (*types.JobDescription, error) {
	var jd types.JobDescription
	if err := a.c.Get(ctx, "/jd/get"+seg(id), nil, &jd); err != nil {
		return nil, err
	}
	return &jd, nil
}

// Update changes editable fields, including the approval status.
func (a *JDs) Update(ctx context.Context, id string, req types.UpdateJDRequest) (*types.JobDescription, error) {
	body := struct {
		ID string `json:"id"`
		types.UpdateJDRequest
	}{ID: id, UpdateJDRequest: req}

	var jd types.JobDescription
	if err := a.c.Post(ctx, "/jd/update", body, &jd); err != nil {
		return nil, err
	}
	return &jd, nil
}

// SetApproval is Update with only the approval status set.
func (a *JDs) SetApproval(ctx context.Context, id string, status types.ApprovalStatus) (*types.JobDescription, error) {
	return a.Update(ctx, id, types.UpdateJDRequest{ApprovalStatus: status})
}

// Delete removes a job description.
func (a *JDs) Delete(ctx context.Context, id string) error {
	return a.c.Post(ctx, "/jd/delete", map[string]string{"id": id}, nil)
}

// Post publishes a job description to the given platforms.
func (a *JDs) Post(ctx context.Context, id string, req types.PostJDRequest) error {
	body := struct {
		ID string `json:"id"`
		types.PostJDRequest
	}{ID: id, PostJDRequest: req}
	return a.c.Post(ctx, "/jd/createPost", body, nil)
}
