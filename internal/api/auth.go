package api

import (
	"context"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Auth talks to the authentication service.
type Auth struct {
	c      *httpclient.Client
	tokens *storage.TokenStore
}

// Login exchanges credentials for a token.
func (a *Auth) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := a.c.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its token.
func (a *Auth) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := a.c.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate returns the user owning the current token.
func (a *Auth) Validate(ctx context.Context) (*types.ValidateResponse, error) {
	var resp types.ValidateResponse
	if err := a.c.Get(ctx, "/auth/validate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the stored token. The backend keeps no session to end.
func (a *Auth) Logout(ctx context.Context) error {
	return a.tokens.Clear(ctx)
}
