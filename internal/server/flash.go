package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/storage"
)

const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// flash is a one-shot notification shown on the next rendered page.
type flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) setFlash(ctx context.Context, kind, message string) {
	data, err := json.Marshal(flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	if err := s.items.SetItem(ctx, storage.KeyFlash, string(data)); err != nil {
		s.log.Warn("failed to store flash", zap.Error(err))
	}
}

func (s *Server) popFlash(ctx context.Context) *flash {
	raw, ok, err := s.items.GetItem(ctx, storage.KeyFlash)
	if err != nil || !ok {
		return nil
	}
	if err := s.items.RemoveItem(ctx, storage.KeyFlash); err != nil {
		s.log.Warn("failed to clear flash", zap.Error(err))
	}

	var f flash
	if err := json.Unmarshal([]byte(raw), &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// seeOther finishes a POST by redirecting to target (post/redirect/get).
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// signedOut redirects to the login page when an API call hit a 401 during
// this request. It reports whether it wrote a response.
func (s *Server) signedOut(w http.ResponseWriter, r *http.Request) bool {
	target, ok := httpclient.RedirectFrom(r.Context())
	if !ok {
		return false
	}
	s.setFlash(r.Context(), flashInfo, "Your session has expired. Please sign in again.")
	http.Redirect(w, r, target, http.StatusSeeOther)
	return true
}

// mutationFailed reports a failed action as a flash and returns the user to back.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if s.signedOut(w, r) {
		return
	}
	s.log.Warn("action failed", zap.String("path", r.URL.Path), zap.Error(err))
	s.setFlash(r.Context(), flashError, httpclient.UserMessage(err, fallback))
	seeOther(w, r, back)
}

// fetchFailed renders page in its error state with a retry link to the
// current URL.
func (s *Server) fetchFailed(w http.ResponseWriter, r *http.Request, page string, pd *pageData, err error, message string) {
	if s.signedOut(w, r) {
		return
	}
	s.log.Warn("failed to load page data", zap.String("page", page), zap.Error(err))
	pd.Error = message
	pd.Retry = r.URL.RequestURI()
	s.render(w, r, HTTPStatus(err), page, pd)
}

// backTo returns path with the given query values, dropping empty ones.
func backTo(path string, params ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(params); i += 2 {
		if params[i+1] != "" {
			q.Set(params[i], params[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
