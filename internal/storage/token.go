package storage

import "context"

// TokenStore reads and writes the bearer token through a Storage.
type TokenStore struct {
	Storage Storage
}

// NewTokenStore wraps s.
func NewTokenStore(s Storage) *TokenStore {
	return &TokenStore{Storage: s}
}

// Token returns the stored token, or "" when none is present.
func (t *TokenStore) Token(ctx context.Context) (string, error) {
	v, ok, err := t.Storage.GetItem(ctx, KeyToken)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// SetToken stores token.
func (t *TokenStore) SetToken(ctx context.Context, token string) error {
	return t.Storage.SetItem(ctx, KeyToken, token)
}

// Clear removes the token and the cached user.
func (t *TokenStore) Clear(ctx context.Context) error {
	if err := t.Storage.RemoveItem(ctx, KeyToken); err != nil {
		return err
	}
	return t.Storage.RemoveItem(ctx, KeyUser)
}
