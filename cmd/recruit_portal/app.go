package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/api"
	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/config"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/logging"
	"github.com/jonathan/recruit-portal/internal/observability"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/types"
)

var errNotSignedIn = errors.New("not signed in; run `recruit_portal login` first")

// app is the wiring shared by the client commands. The token and cached user
// live in a JSON file so that separate invocations share a session.
type app struct {
	cfg   *config.Config
	api   *api.Client
	auth  *auth.Store
	print *observability.Printer
	log   *zap.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := zap.NewNop()
	if verbose {
		if log, err = logging.New("debug"); err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	items := storage.NewFile(cfg.TokenFile)
	tokens := storage.NewTokenStore(items)
	nav := httpclient.WriterNavigator{Out: cmd.ErrOrStderr(), Command: rootCmd.Name()}

	newClient := func(name, baseURL string) (*httpclient.Client, error) {
		return httpclient.New(httpclient.Options{
			Name:      name,
			BaseURL:   baseURL,
			Timeout:   cfg.RequestTimeout,
			Tokens:    tokens,
			Navigator: nav,
			Logger:    log,
		})
	}
	mainClient, err := newClient(httpclient.Main, cfg.MainAPIURL)
	if err != nil {
		return nil, err
	}
	authClient, err := newClient(httpclient.Auth, cfg.AuthAPIURL)
	if err != nil {
		return nil, err
	}
	client := api.New(mainClient, authClient, tokens)

	return &app{
		cfg:   cfg,
		api:   client,
		auth:  auth.NewStore(items, client.Auth, log),
		print: observability.NewPrinter(cmd.OutOrStdout()),
		log:   log,
	}, nil
}

// user restores the stored session and fails when nobody is signed in.
func (a *app) user(ctx context.Context) (*types.User, error) {
	state, err := a.auth.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if !state.IsAuthenticated || state.User == nil {
		return nil, errNotSignedIn
	}
	return state.User, nil
}

// requireRole is user plus a role check mirroring the portal's guards.
func (a *app) requireRole(ctx context.Context, allowed ...types.Role) (*types.User, error) {
	u, err := a.user(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range allowed {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, fmt.Errorf("this command is not available to the %s role", u.Role)
}

func (a *app) requireHR(ctx context.Context) (*types.User, error) {
	return a.requireRole(ctx, types.RoleAdmin, types.RoleHR)
}

// printf writes a plain line to the command's output.
func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
