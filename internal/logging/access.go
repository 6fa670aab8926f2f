package logging

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AccessLog returns middleware that logs one line per request.
// 5xx responses log at error, 4xx at warn, health checks at debug.
func AccessLog(l *zap.Logger) func(next http.Handler) http.Handler {
	if l == nil {
		panic("logging.AccessLog received a nil *zap.Logger")
	}
	logger := l.Named("http")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				fields := []zap.Field{
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("http_method", r.Method),
					zap.String("http_path", r.URL.Path),
					zap.Int("http_status_code", status),
					zap.String("http_status_text", statusLabel(status)),
					zap.Int("response_bytes", ww.BytesWritten()),
					zap.Duration("latency", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
				}
				msg := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

				switch {
				case status >= 500:
					logger.Error(msg, fields...)
				case status >= 400:
					logger.Warn(msg, fields...)
				case isHealthCheck(r):
					logger.Debug(msg, fields...)
				default:
					logger.Info(msg, fields...)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

func isHealthCheck(r *http.Request) bool {
	return r.Method == http.MethodGet && (r.URL.Path == "/health" || r.URL.Path == "/metrics")
}

func statusLabel(status int) string {
	switch {
	case status >= 100 && status < 300:
		return fmt.Sprintf("%d OK", status)
	case status >= 300 && status < 400:
		return fmt.Sprintf("%d Redirect", status)
	case status >= 400 && status < 500:
		return fmt.Sprintf("%d Client Error", status)
	case status >= 500:
		return fmt.Sprintf("%d Server Error", status)
	default:
		return fmt.Sprintf("%d Unknown", status)
	}
}
