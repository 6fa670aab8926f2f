package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/guard"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/logging"
	"github.com/jonathan/recruit-portal/internal/server/middleware"
	"github.com/jonathan/recruit-portal/internal/server/ratelimit"
	"github.com/jonathan/recruit-portal/internal/types"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.AccessLog(s.log))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(chimw.Recoverer)
	r.Use(ratelimit.Middleware(s.limiter, s.log))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(s.signer, middleware.CookieOptions{MaxAge: s.signer.TTL(), Secure: s.cookie}, s.log))
		r.Use(withNavigation)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, guard.DashboardPath, http.StatusFound)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", s.handleLoginForm)
			r.Post("/login", s.handleLogin)
			r.Get("/register", s.handleRegisterForm)
			r.Post("/register", s.handleRegister)
			r.Post("/logout", s.handleLogout)
		})
		r.Get("/unauthorized", s.handleUnauthorized)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(s.guard(guard.DashboardPath, types.RoleAdmin, types.RoleHR))

			r.Get("/", s.handleOverview)

			r.Get("/jd", s.handleJDList)
			r.Get("/jd/create", s.handleJDCreateForm)
			r.Post("/jd/create", s.handleJDCreate)
			r.Post("/jd/{id}/approve", s.handleJDApproval(types.ApprovalApproved))
			r.Post("/jd/{id}/reject", s.handleJDApproval(types.ApprovalRejected))
			r.Post("/jd/{id}/delete", s.handleJDDelete)
			r.Post("/jd/{id}/post", s.handleJDPost)

			r.Get("/resume", s.handleCandidates)
			r.Post("/resume/shortlist", s.handleShortlist)
			r.Post("/resume/assessments", s.handleInitAssessments)

			r.Get("/assessment", s.handleAssessments)
			r.Get("/assessment/export", s.handleAssessmentExport)
			r.Post("/assessment/schedule", s.handleScheduleInterviews)
			r.Get("/assessment/{id}", s.handleAssessmentDetail)
			r.Get("/assessment/{id}/report", s.handleAssessmentReport)

			r.Get("/interview", s.handleInterviews)
			r.Post("/interview/{id}/status", s.handleInterviewStatus)
			r.Post("/interview/{id}/feedback", s.handleInterviewFeedback)

			r.Get("/offer", s.handleOffers)
			r.Get("/offer/create", s.handleOfferCreateForm)
			r.Post("/offer/create", s.handleOfferCreate)
			r.Post("/offer/{id}/resend", s.handleOfferResend)
			r.Post("/offer/{id}/status", s.handleOfferStatus)

			r.Get("/onboarding", s.handleOnboarding)
			r.Post("/onboarding/create", s.handleOnboardingCreate)
		})

		r.Route("/candidate", func(r chi.Router) {
			r.Use(s.guard(guard.CandidatePath, types.RoleCandidate))

			r.Get("/", s.handleCandidateHome)
			r.Get("/tests", s.handleCandidateTests)
			r.Route("/tests/{testID}", func(r chi.Router) {
				r.Get("/", s.handleTest)
				r.Post("/start", s.handleTestStart)
				r.Post("/answer", s.handleTestAnswer)
				r.Post("/goto", s.handleTestGoto)
				r.Post("/submit", s.handleTestSubmit)
				r.Get("/events", s.handleTestEvents)
				r.Post("/leave", s.handleTestLeave)
			})
			r.Get("/interviews", s.handleCandidateInterviews)
			r.Get("/offers", s.handleCandidateOffers)
			r.Get("/onboarding", s.handleCandidateOnboarding)
		})

		r.NotFound(s.handleNotFound)
	})

	return r
}

// guard protects an area of the portal for the given roles.
func (s *Server) guard(area string, allowed ...types.Role) func(http.Handler) http.Handler {
	return guard.Guard{
		Area:    area,
		Allowed: allowed,
		Resolve: s.resolveAuth,
		Metrics: s.metrics,
		Logger:  s.log,
	}.Handler
}

func (s *Server) resolveAuth(r *http.Request) (auth.State, error) {
	return s.auth.Restore(r.Context())
}

// withNavigation lets API clients request a redirect, which handlers apply
// once the failing call returns.
func withNavigation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := httpclient.WithRedirect(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"status":        "ok",
		"test_sessions": s.tests.Len(),
	})
}
