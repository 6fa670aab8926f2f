package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prefixCodec signs ids by prefixing them. Tokens without the prefix are invalid.
type prefixCodec struct {
	failIssue bool
}

func (c prefixCodec) Issue(id string) (string, error) {
	if c.failIssue {
		return "", errors.New("signing failed")
	}
	return "signed." + id, nil
}

func (prefixCodec) Parse(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "signed.")
	if !ok {
		return "", errors.New("bad signature")
	}
	return id, nil
}

func serve(t *testing.T, codec SessionCodec, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var seen string
	h := Session(codec, CookieOptions{MaxAge: time.Hour, Secure: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SessionID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestSession_IssuesCookieWhenMissing(t *testing.T) {
	rec, sid := serve(t, prefixCodec{}, nil)

	require.NotEmpty(t, sid)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, "signed."+sid, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
}

func TestSession_ReusesValidCookie(t *testing.T) {
	rec, sid := serve(t, prefixCodec{}, &http.Cookie{Name: CookieName, Value: "signed.abc"})

	assert.Equal(t, "abc", sid)
	assert.Empty(t, rec.Result().Cookies(), "no new cookie for a valid session")
}

func TestSession_ReplacesTamperedCookie(t *testing.T) {
	rec, sid := serve(t, prefixCodec{}, &http.Cookie{Name: CookieName, Value: "forged.abc"})

	assert.NotEqual(t, "abc", sid)
	require.Len(t, rec.Result().Cookies(), 1)
}

func TestSession_IssueFailure(t *testing.T) {
	rec, sid := serve(t, prefixCodec{failIssue: true}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, sid)
}
