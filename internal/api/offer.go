package api

import (
	"context"
	"encoding/json"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Offers talks to the offer and onboarding service.
type Offers struct {
	c *httpclient.Client
}

// Create drafts an offer letter.
func (a *Offers) Create(ctx context.Context, req types.CreateOfferRequest) (*types.Offer, error) {
	var resp types.OfferResponse
	if err := a.c.Post(ctx, "/oo/create", req, &resp); err != nil {
		return nil, err
	}
	return resp.Offer, nil
}

// List returns every offer.
func (a *Offers) List(ctx context.Context) ([]types.Offer, error) {
	var raw json.RawMessage
	if err := a.c.Get(ctx, "/oo/list", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.Offer](raw, "offers")
}

// Get returns one offer.
func (a *Offers) Get(ctx context.Context, id string) (*types.Offer, error) {
	var raw json.RawMessage
	if err := a.c.Get(ctx, "/oo"+seg(id), nil, &raw); err != nil {
		return nil, err
	}
	offer, err := unwrapField[types.Offer](raw, "offer")
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// UpdateStatus moves an offer to a new status.
func (a *Offers) UpdateStatus(ctx context.Context, id string, status types.OfferStatus) (*types.Offer, error) {
	var resp types.OfferResponse
	req := types.UpdateOfferStatusRequest{Status: status}
	if err := a.c.Put(ctx, "/oo/status"+seg(id), req, &resp); err != nil {
		return nil, err
	}
	return resp.Offer, nil
}

// Resend emails a sent offer to the candidate again.
func (a *Offers) Resend(ctx context.Context, id string) (*types.MessageResponse, error) {
	var resp types.MessageResponse
	if err := a.c.Post(ctx, "/oo/resend"+seg(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOnboardingTask adds a task to a hired candidate's checklist.
func (a *Offers) CreateOnboardingTask(ctx context.Context, req types.CreateOnboardingTaskRequest) (*types.OnboardingTask, error) {
	var resp types.TaskResponse
	if err := a.c.Post(ctx, "/oo/onboarding/create", req, &resp); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// OnboardingTasks lists a candidate's onboarding tasks.
func (a *Offers) OnboardingTasks(ctx context.Context, candidateID string) ([]types.OnboardingTask, error) {
	var raw json.RawMessage
	if err := a.c.Get(ctx, "/oo/onboarding"+seg(candidateID), nil, &raw); err != nil {
		return nil, err
	}
	return unwrapField[[]types.OnboardingTask](raw, "tasks")
}
