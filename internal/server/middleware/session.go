// Package middleware binds each browser to a portal session.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/storage"
)

// CookieName is the session cookie.
const CookieName = "recruit_session"

// SessionCodec signs and verifies session ids carried in the cookie.
type SessionCodec interface {
	Issue(sessionID string) (string, error)
	Parse(token string) (string, error)
}

// CookieOptions controls the session cookie attributes.
type CookieOptions struct {
	MaxAge time.Duration
	Secure bool
}

// Session resolves the session id from the signed cookie, issuing a fresh
// session when the cookie is absent, tampered with or expired. The id is
// stored in the request context for storage lookups.
func Session(codec SessionCodec, opts CookieOptions, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("session")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
				id, err := codec.Parse(c.Value)
				if err != nil {
					log.Debug("discarding session cookie", zap.Error(err))
				} else {
					sid = id
				}
			}

			if sid == "" {
				sid = storage.NewSessionID()
				token, err := codec.Issue(sid)
				if err != nil {
					log.Error("failed to issue session cookie", zap.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(opts.MaxAge / time.Second),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(storage.WithSessionID(r.Context(), sid)))
		})
	}
}

// SessionID returns the session id bound to r.
func SessionID(r *http.Request) (string, bool) {
	return storage.SessionID(r.Context())
}
