package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// ClientID identifies the caller by remote IP. chi's RealIP middleware runs
// earlier, so proxies are already accounted for.
func ClientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on every limited response.
func Middleware(l *Limiter, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := ClientID(r)
			info := l.Allow(client, r.URL.Path, r.Method)
			setHeaders(w, info)

			if !info.Allowed {
				log.Warn("rate limit exceeded",
					zap.String("client", client),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				secs := int(math.Ceil(info.RetryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				http.Error(w, "Too many requests. Please wait a moment and try again.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setHeaders(w http.ResponseWriter, info Info) {
	if info.Limit <= 0 {
		return
	}
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}
