package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Backend is the subset of the auth API the store needs.
type Backend interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error)
	Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error)
	Validate(ctx context.Context) (*types.ValidateResponse, error)
}

// ErrMissingToken is returned when the backend accepts credentials but sends no token.
var ErrMissingToken = errors.New("auth response did not include a token")

// Store persists the token and cached user in a storage.Storage.
type Store struct {
	items   storage.Storage
	tokens  *storage.TokenStore
	backend Backend
	now     func() time.Time
	log     *zap.Logger
}

// NewStore creates a store. A nil logger disables logging.
func NewStore(items storage.Storage, backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		items:   items,
		tokens:  storage.NewTokenStore(items),
		backend: backend,
		now:     time.Now,
		log:     log.Named("auth"),
	}
}

// Tokens returns the token store backing s.
func (s *Store) Tokens() *storage.TokenStore {
	return s.tokens
}

// Restore rebuilds the state from storage. Expired tokens are cleared. When
// no usable cached user exists the token is validated against the backend,
// and any validation failure signs the user out.
func (s *Store) Restore(ctx context.Context) (State, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return State{}, err
	}
	if token == "" {
		return State{}, nil
	}

	if TokenExpired(token, s.now()) {
		s.log.Debug("stored token expired")
		return State{}, s.tokens.Clear(ctx)
	}

	if user := s.cachedUser(ctx); user != nil {
		return signedIn(user, token), nil
	}

	resp, err := s.backend.Validate(ctx)
	if err != nil || resp.User == nil {
		if err != nil && !errors.Is(err, httpclient.ErrUnauthorized) {
			s.log.Warn("token validation failed", zap.Error(err))
		}
		return State{}, s.tokens.Clear(ctx)
	}

	if err := s.cacheUser(ctx, resp.User); err != nil {
		return State{}, err
	}
	return signedIn(resp.User, token), nil
}

// Login authenticates and persists the resulting session.
func (s *Store) Login(ctx context.Context, req types.LoginRequest) (State, error) {
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		return State{}, err
	}
	return s.persist(ctx, resp)
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, req types.RegisterRequest) (State, error) {
	resp, err := s.backend.Register(ctx, req)
	if err != nil {
		return State{}, err
	}
	return s.persist(ctx, resp)
}

// Logout clears the token and cached user.
func (s *Store) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

func (s *Store) persist(ctx context.Context, resp *types.AuthResponse) (State, error) {
	if resp.Token == "" {
		return State{}, ErrMissingToken
	}
	if err := s.tokens.SetToken(ctx, resp.Token); err != nil {
		return State{}, err
	}
	if resp.User != nil {
		if err := s.cacheUser(ctx, resp.User); err != nil {
			return State{}, err
		}
	}
	s.log.Info("signed in", zap.String("user_id", userKey(resp.User)))
	return signedIn(resp.User, resp.Token), nil
}

func (s *Store) cachedUser(ctx context.Context) *types.User {
	raw, ok, err := s.items.GetItem(ctx, storage.KeyUser)
	if err != nil || !ok {
		return nil
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.Role == "" {
		s.log.Debug("ignoring unusable cached user", zap.Error(err))
		return nil
	}
	return &user
}

func (s *Store) cacheUser(ctx context.Context, user *types.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.items.SetItem(ctx, storage.KeyUser, string(data))
}

func userKey(u *types.User) string {
	if u == nil {
		return ""
	}
	return u.Key()
}
