package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/api"
	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/config"
	"github.com/jonathan/recruit-portal/internal/guard"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/server/ratelimit"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/testsession"
)

const (
	// sweepInterval is how often finished test sessions are dropped.
	sweepInterval = 30 * time.Second
	// sessionIdleTTL is how long stored session items outlive their last
	// write when the session cookie has no lifetime of its own.
	sessionIdleTTL = 7 * 24 * time.Hour
)

// Purger deletes idle sessions. *db.SessionStore and *storage.Memory
// implement it.
type Purger interface {
	PurgeIdle(ctx context.Context, maxAge time.Duration) (int64, error)
}

// Deps are the collaborators a Server needs beyond configuration.
type Deps struct {
	// Storage holds per-session items. Memory storage is used when nil.
	Storage storage.Storage
	// Purger removes idle sessions on the sweep interval. When nil, Storage is
	// used if it implements Purger.
	Purger Purger
	// RateLimit is the limiter configuration. Nil disables rate limiting.
	RateLimit *ratelimit.Config
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	// Clock drives test countdowns. The real clock is used when nil.
	Clock testsession.Clock
}

// Server is the portal HTTP server.
type Server struct {
	cfg     *config.Config
	api     *api.Client
	auth    *auth.Store
	items   storage.Storage
	tests   *testsession.Manager
	signer  *SessionSigner
	cookie  bool
	limiter *ratelimit.Limiter
	purger  Purger
	idleTTL time.Duration
	metrics *metrics.Metrics
	log     *zap.Logger
	views   *views
	clock   testsession.Clock

	// eventInterval paces the countdown stream.
	eventInterval time.Duration

	handler    http.Handler
	httpServer *http.Server
}

// New wires the portal. Both backends are reached through clients that share
// the session-scoped token store, so a 401 from either clears the session.
func New(cfg *config.Config, sess *config.SessionConfig, deps Deps) (*Server, error) {
	if cfg == nil || sess == nil {
		return nil, fmt.Errorf("server: config and session config are required")
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	items := deps.Storage
	if items == nil {
		items = storage.NewMemory()
	}
	purger := deps.Purger
	if purger == nil {
		if p, ok := items.(Purger); ok {
			purger = p
		}
	}
	clock := deps.Clock
	if clock == nil {
		clock = testsession.RealClock{}
	}
	rl := deps.RateLimit
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}

	tokens := storage.NewTokenStore(items)
	newClient := func(name, baseURL string) (*httpclient.Client, error) {
		return httpclient.New(httpclient.Options{
			Name:      name,
			BaseURL:   baseURL,
			Timeout:   cfg.RequestTimeout,
			Tokens:    tokens,
			Navigator: httpclient.ContextNavigator{},
			Metrics:   deps.Metrics,
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

	v, err := loadViews()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		api:     client,
		auth:    auth.NewStore(items, client.Auth, log),
		items:   items,
		signer:  NewSessionSigner(sess),
		cookie:  sess.CookieSecure,
		limiter: ratelimit.NewLimiter(rl),
		purger:  purger,
		metrics: deps.Metrics,
		log:     log.Named("server"),
		views:   v,
		clock:   clock,

		eventInterval: time.Second,
	}
	// A session idle for longer than its cookie's lifetime can never be
	// presented again.
	s.idleTTL = s.signer.TTL()
	if s.idleTTL <= 0 {
		s.idleTTL = sessionIdleTTL
	}
	s.tests = testsession.NewManager(testsession.Options{
		Duration:       cfg.TestDuration,
		RedirectDelay:  cfg.SubmitRedirectDelay,
		RedirectTarget: guard.DashboardPath,
		SubmitTimeout:  cfg.RequestTimeout,
		Clock:          clock,
		Metrics:        deps.Metrics,
		Logger:         log,
	})
	s.handler = s.routes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No write timeout: the countdown stream stays open for the whole test.
		IdleTimeout: 60 * time.Second,
	}
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor(janitorCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("portal listening", zap.String("addr", ln.Addr().String()), zap.String("config", s.cfg.String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Streams end when their sessions close, which lets Shutdown drain.
	s.tests.Shutdown()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	return nil
}

// Close releases background resources. It does not stop a running listener.
func (s *Server) Close() {
	s.limiter.Stop()
	s.tests.Shutdown()
}

// janitor drops finished test sessions and idle stored sessions.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		s.sweep(ctx)
	}
}

// sweep runs one janitor pass.
func (s *Server) sweep(ctx context.Context) {
	if n := s.tests.Sweep(s.clock.Now()); n > 0 {
		s.log.Debug("swept test sessions", zap.Int("count", n))
	}
	if s.purger == nil {
		return
	}
	n, err := s.purger.PurgeIdle(ctx, s.idleTTL)
	if err != nil {
		s.log.Warn("failed to purge idle sessions", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("purged idle sessions", zap.Int64("count", n))
	}
}
