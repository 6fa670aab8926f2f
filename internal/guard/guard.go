// Package guard decides whether a signed-in user may see an area of the
// portal and, when not, where to send them.
package guard

import (
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/metrics"
	"github.com/jonathan/recruit-portal/internal/types"
)

// Route targets used by redirects.
const (
	LoginPath        = httpclient.LoginPath
	DashboardPath    = "/dashboard"
	CandidatePath    = "/candidate"
	UnauthorizedPath = "/unauthorized"
)

// Outcome is the kind of decision.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// Decision is the result of Decide. Target is set only for Redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

// Decide is a pure function of the auth state and the allowed roles.
func Decide(state auth.State, allowed []types.Role) Decision {
	switch {
	case state.Loading:
		return Decision{Outcome: Pending}
	case !state.IsAuthenticated || state.User == nil:
		return Decision{Outcome: Redirect, Target: LoginPath}
	case slices.Contains(allowed, state.User.Role):
		return Decision{Outcome: Allow}
	default:
		return Decision{Outcome: Redirect, Target: Fallback(state)}
	}
}

// DecideArea is Decide for a specific area. A fallback pointing back at the
// area itself is replaced with the unauthorized page.
func DecideArea(state auth.State, area string, allowed []types.Role) Decision {
	d := Decide(state, allowed)
	if d.Outcome == Redirect && d.Target == area {
		d.Target = UnauthorizedPath
	}
	return d
}

// Fallback is the home area for the user's role.
func Fallback(state auth.State) string {
	flags := state.Flags()
	switch {
	case flags.IsHR:
		return DashboardPath
	case flags.IsCandidate:
		return CandidatePath
	default:
		return UnauthorizedPath
	}
}

// Resolver loads the auth state for a request.
type Resolver func(r *http.Request) (auth.State, error)

// Guard protects one area of the portal.
type Guard struct {
	Area    string
	Allowed []types.Role
	Resolve Resolver
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Middleware returns a guard for area with no metrics or logging.
func Middleware(area string, resolve Resolver, allowed ...types.Role) func(http.Handler) http.Handler {
	return Guard{Area: area, Allowed: allowed, Resolve: resolve}.Handler
}

// Handler runs next only when the decision is Allow. The resolved state is
// stored in the request context for layouts.
func (g Guard) Handler(next http.Handler) http.Handler {
	log := g.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("guard").With(zap.String("area", g.Area))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, err := g.Resolve(r)
		if err != nil {
			log.Error("failed to resolve auth state", zap.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		d := DecideArea(state, g.Area, g.Allowed)
		g.Metrics.ObserveGuard(g.Area, outcomeLabel(d))

		switch d.Outcome {
		case Allow:
			next.ServeHTTP(w, r.WithContext(auth.WithState(r.Context(), state)))
		case Pending:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Loading...", http.StatusServiceUnavailable)
		default:
			log.Debug("redirecting", zap.String("path", r.URL.Path), zap.String("target", d.Target))
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
		}
	})
}

func outcomeLabel(d Decision) string {
	switch {
	case d.Outcome != Redirect:
		return d.Outcome.String()
	case d.Target == LoginPath:
		return "redirect_login"
	default:
		return "redirect_fallback"
	}
}
