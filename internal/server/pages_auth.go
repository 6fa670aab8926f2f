package server

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/guard"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/server/middleware"
	"github.com/jonathan/recruit-portal/internal/storage"
	"github.com/jonathan/recruit-portal/internal/types"
)

// registerRoles are the roles offered on the sign-up form.
var registerRoles = []types.Role{types.RoleCandidate, types.RoleHR}

// redirectSignedIn sends an already authenticated user to their home area.
func (s *Server) redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	state, err := s.auth.Restore(r.Context())
	if err != nil || !state.IsAuthenticated {
		return false
	}
	http.Redirect(w, r, guard.Fallback(state), http.StatusSeeOther)
	return true
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.redirectSignedIn(w, r) {
		return
	}
	s.render(w, r, http.StatusOK, "login", &pageData{Title: "Sign in"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := types.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	f := newForm(r.PostForm)
	f.Values.Del("password")
	pd := &pageData{Title: "Sign in", Form: f}

	if !f.check(&req) {
		s.render(w, r, http.StatusUnprocessableEntity, "login", pd)
		return
	}

	state, err := s.auth.Login(r.Context(), req)
	if err != nil {
		s.log.Info("login failed", zap.String("email", req.Email), zap.Error(err))
		f.Message = httpclient.UserMessage(err, "Login failed. Please check your credentials.")
		s.render(w, r, authFailureStatus(err), "login", pd)
		return
	}

	s.setFlash(r.Context(), flashSuccess, "Welcome back, "+displayName(state)+"!")
	seeOther(w, r, guard.Fallback(state))
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if s.redirectSignedIn(w, r) {
		return
	}
	f := newForm(nil)
	f.Values.Set("role", string(types.RoleCandidate))
	s.render(w, r, http.StatusOK, "register", &pageData{Title: "Create account", Form: f, Data: registerRoles})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	req := types.RegisterRequest{
		Name:     strings.TrimSpace(r.PostForm.Get("name")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Role:     types.Role(r.PostForm.Get("role")),
	}
	f := newForm(r.PostForm)
	f.Values.Del("password")
	if r.PostForm.Get("password") != r.PostForm.Get("confirm_password") {
		f.Errors["confirm_password"] = "Passwords do not match"
	}
	f.Values.Del("confirm_password")
	pd := &pageData{Title: "Create account", Form: f, Data: registerRoles}

	if !f.check(&req) || f.Invalid() {
		s.render(w, r, http.StatusUnprocessableEntity, "register", pd)
		return
	}

	state, err := s.auth.Register(r.Context(), req)
	if err != nil {
		s.log.Info("registration failed", zap.String("email", req.Email), zap.Error(err))
		f.Message = httpclient.UserMessage(err, "Registration failed. Please try again.")
		s.render(w, r, authFailureStatus(err), "register", pd)
		return
	}

	s.setFlash(r.Context(), flashSuccess, "Account created. Welcome, "+displayName(state)+"!")
	seeOther(w, r, guard.Fallback(state))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.auth.Logout(ctx); err != nil {
		s.log.Warn("failed to clear session", zap.Error(err))
	}
	if sid, ok := middleware.SessionID(r); ok {
		s.tests.CloseSession(sid)
		if d, ok := s.items.(storage.SessionDeleter); ok {
			if err := d.DeleteSession(ctx, sid); err != nil {
				s.log.Warn("failed to delete session items", zap.Error(err))
			}
		}
	}
	s.setFlash(ctx, flashInfo, "You have been signed out.")
	seeOther(w, r, guard.LoginPath)
}

func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	state, _ := s.auth.Restore(r.Context())
	s.render(w, r, http.StatusForbidden, "unauthorized", &pageData{Title: "Access denied", State: state})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "not_found", &pageData{Title: "Page not found"})
}

// authFailureStatus keeps credential rejections distinct from outages.
func authFailureStatus(err error) int {
	if code := httpclient.StatusCode(err); code >= 400 && code < 500 {
		return code
	}
	if errors.Is(err, auth.ErrMissingToken) {
		return http.StatusBadGateway
	}
	return HTTPStatus(err)
}

func displayName(state auth.State) string {
	if state.User == nil {
		return ""
	}
	if state.User.Name != "" {
		return state.User.Name
	}
	return state.User.Email
}
