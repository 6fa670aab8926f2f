package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	_, ok := SessionID(context.Background())
	assert.False(t, ok)

	_, ok = SessionID(WithSessionID(context.Background(), ""))
	assert.False(t, ok, "empty id is not a session")

	id := NewSessionID()
	got, ok := SessionID(WithSessionID(context.Background(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)
	assert.NotEqual(t, id, NewSessionID())
}

func TestMemory_RequiresSession(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, _, err := m.GetItem(ctx, KeyToken)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, m.SetItem(ctx, KeyToken, "x"), ErrNoSession)
	assert.ErrorIs(t, m.RemoveItem(ctx, KeyToken), ErrNoSession)
}

func TestMemory_SessionsAreIsolated(t *testing.T) {
	m := NewMemory()
	alice := WithSessionID(context.Background(), "alice")
	bob := WithSessionID(context.Background(), "bob")

	require.NoError(t, m.SetItem(alice, KeyToken, "alice-token"))

	v, ok, err := m.GetItem(alice, KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice-token", v)

	_, ok, err = m.GetItem(bob, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_RemoveAndDeleteSession(t *testing.T) {
	m := NewMemory()
	ctx := WithSessionID(context.Background(), "s1")

	require.NoError(t, m.SetItem(ctx, KeyToken, "t"))
	require.NoError(t, m.SetItem(ctx, KeyUser, "{}"))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.RemoveItem(ctx, KeyToken))
	_, ok, _ := m.GetItem(ctx, KeyToken)
	assert.False(t, ok)

	require.NoError(t, m.DeleteSession(ctx, "s1"))
	assert.Equal(t, 0, m.Len())
	_, ok, _ = m.GetItem(ctx, KeyUser)
	assert.False(t, ok)
}

func TestMemory_PurgeIdle(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	m := NewMemoryWithClock(func() time.Time { return now })
	stale := WithSessionID(context.Background(), "stale")
	active := WithSessionID(context.Background(), "active")

	require.NoError(t, m.SetItem(stale, KeyToken, "old"))
	now = now.Add(90 * time.Minute)
	require.NoError(t, m.SetItem(active, KeyToken, "new"))

	n, err := m.PurgeIdle(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, m.Len())

	_, ok, _ := m.GetItem(stale, KeyToken)
	assert.False(t, ok)
	v, ok, _ := m.GetItem(active, KeyToken)
	assert.True(t, ok)
	assert.Equal(t, "new", v)

	// A write refreshes the session.
	now = now.Add(50 * time.Minute)
	require.NoError(t, m.SetItem(active, KeyFlash, "hi"))
	now = now.Add(50 * time.Minute)
	n, err = m.PurgeIdle(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Concurrent(t *testing.T) {
	m := NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := WithSessionID(context.Background(), NewSessionID())
			_ = m.SetItem(ctx, KeyToken, "t")
			_, _, _ = m.GetItem(ctx, KeyToken)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, m.Len())
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	f := NewFile(path)
	ctx := context.Background()

	_, ok, err := f.GetItem(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok, "missing file reads as empty")

	require.NoError(t, f.SetItem(ctx, KeyToken, "abc"))
	require.NoError(t, f.SetItem(ctx, KeyUser, `{"role":"hr"}`))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened := NewFile(path)
	v, ok, err := reopened.GetItem(ctx, KeyUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"role":"hr"}`, v)

	require.NoError(t, reopened.RemoveItem(ctx, KeyToken))
	_, ok, err = f.GetItem(ctx, KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token": 12}`), 0600))

	_, _, err := NewFile(path).GetItem(context.Background(), KeyToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt")
}

func TestTokenStore(t *testing.T) {
	ts := NewTokenStore(NewMemory())
	ctx := WithSessionID(context.Background(), "s")

	tok, err := ts.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, ts.SetToken(ctx, "jwt"))
	require.NoError(t, ts.Storage.SetItem(ctx, KeyUser, "{}"))
	require.NoError(t, ts.Storage.SetItem(ctx, KeyFlash, "hello"))

	tok, err = ts.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)

	require.NoError(t, ts.Clear(ctx))
	tok, _ = ts.Token(ctx)
	assert.Empty(t, tok)
	_, ok, _ := ts.Storage.GetItem(ctx, KeyUser)
	assert.False(t, ok, "cached user is cleared with the token")
	_, ok, _ = ts.Storage.GetItem(ctx, KeyFlash)
	assert.True(t, ok, "other keys survive")
}

func TestTokenStore_PropagatesErrors(t *testing.T) {
	ts := NewTokenStore(NewMemory())
	_, err := ts.Token(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}
