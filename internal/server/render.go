package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/recruit-portal/internal/auth"
	"github.com/jonathan/recruit-portal/internal/types"
)

//go:embed templates
var templatesFS embed.FS

const (
	layoutAuth      = "auth"
	layoutDashboard = "dashboard"
)

// pageLayouts maps each page template to the layout it renders in.
var pageLayouts = map[string]string{
	"login":        layoutAuth,
	"register":     layoutAuth,
	"unauthorized": layoutAuth,
	"not_found":    layoutAuth,

	"overview":          layoutDashboard,
	"jd_list":           layoutDashboard,
	"jd_create":         layoutDashboard,
	"candidates":        layoutDashboard,
	"assessments":       layoutDashboard,
	"assessment_detail": layoutDashboard,
	"interviews":        layoutDashboard,
	"offers":            layoutDashboard,
	"offer_create":      layoutDashboard,
	"onboarding":        layoutDashboard,

	"candidate_home":       layoutDashboard,
	"candidate_tests":      layoutDashboard,
	"test":                 layoutDashboard,
	"candidate_interviews": layoutDashboard,
	"candidate_offers":     layoutDashboard,
	"candidate_onboarding": layoutDashboard,
}

type view struct {
	tmpl   *template.Template
	layout string
}

type views struct {
	pages map[string]view
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]view, len(pageLayouts))}
	for name, layout := range pageLayouts {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templatesFS,
			"templates/layouts/*.html",
			"templates/partials/*.html",
			"templates/pages/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", name, err)
		}
		v.pages[name] = view{tmpl: t, layout: layout}
	}
	return v, nil
}

type navItem struct {
	Title  string
	URL    string
	Active bool
}

var (
	hrNav = []navItem{
		{Title: "Dashboard", URL: "/dashboard"},
		{Title: "Job Descriptions", URL: "/dashboard/jd"},
		{Title: "Candidates", URL: "/dashboard/resume"},
		{Title: "Assessments", URL: "/dashboard/assessment"},
		{Title: "Interviews", URL: "/dashboard/interview"},
		{Title: "Offers", URL: "/dashboard/offer"},
		{Title: "Onboarding", URL: "/dashboard/onboarding"},
	}
	candidateNav = []navItem{
		{Title: "Dashboard", URL: "/candidate"},
		{Title: "My Tests", URL: "/candidate/tests"},
		{Title: "Interviews", URL: "/candidate/interviews"},
		{Title: "Offers", URL: "/candidate/offers"},
		{Title: "Onboarding", URL: "/candidate/onboarding"},
	}
)

// navFor returns the sidebar for the user's role with the current entry marked.
// The longest matching prefix wins so "/dashboard" is not active on sub-pages.
func navFor(flags auth.RoleFlags, path string) []navItem {
	base := hrNav
	if flags.IsCandidate {
		base = candidateNav
	}
	items := make([]navItem, len(base))
	copy(items, base)

	best := -1
	for i, it := range items {
		if path == it.URL || strings.HasPrefix(path, it.URL+"/") {
			if best < 0 || len(it.URL) > len(items[best].URL) {
				best = i
			}
		}
	}
	if best >= 0 {
		items[best].Active = true
	}
	return items
}

// pageData is what every layout receives.
type pageData struct {
	Title string
	Path  string
	State auth.State
	Flags auth.RoleFlags
	Nav   []navItem
	Flash *flash

	// Error switches the content area to the error state with a retry link.
	Error string
	Retry string

	Form *form
	Data any
}

// render executes a page in its layout. The page is buffered so template
// failures produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, pd *pageData) {
	v, ok := s.views.pages[name]
	if !ok {
		s.log.Error("unknown page", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	if pd.State.User == nil {
		if st, ok := auth.FromContext(ctx); ok {
			pd.State = st
		}
	}
	pd.Path = r.URL.Path
	pd.Flags = pd.State.Flags()
	pd.Nav = navFor(pd.Flags, r.URL.Path)
	if pd.Flash == nil {
		pd.Flash = s.popFlash(ctx)
	}
	if pd.Form == nil {
		pd.Form = newForm(nil)
	}

	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, v.layout, pd); err != nil {
		s.log.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck
}

var templateFuncs = template.FuncMap{
	"humanize": func(v any) string { return types.Humanize(fmt.Sprint(v)) },
	"date":     formatDate,
	"datetime": formatDateTime,
	"money":    formatMoney,
	"pct":      func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
	"score":    func(v float64) string { return strconv.FormatFloat(v, 'f', 0, 64) },
	"join":     strings.Join,
	"inc":      func(i int) int { return i + 1 },
	"dec":      func(i int) int { return i - 1 },
	"badge":    badgeClass,
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if s == v {
				return true
			}
		}
		return false
	},
	"ratio": func(v float64) float64 { return v * 100 },
	"list":  func(v ...int) []int { return v },
	"bar": func(v float64) int {
		return int(max(0, min(100, v)))
	},
	"width": func(part, whole int) int {
		if whole <= 0 || part <= 0 {
			return 0
		}
		return min(100, part*100/whole)
	},
}

func formatDate(s string) string {
	t, ok := types.ParseTime(s)
	if !ok {
		if s == "" {
			return "—"
		}
		return s
	}
	return t.Format("Jan 2, 2006")
}

func formatDateTime(s string) string {
	t, ok := types.ParseTime(s)
	if !ok {
		if s == "" {
			return "—"
		}
		return s
	}
	return t.Format("Jan 2, 2006 15:04")
}

// formatMoney renders an amount with thousands separators, e.g. "INR 1,250,000".
func formatMoney(sal types.Salary) string {
	raw := strconv.FormatFloat(sal.Amount, 'f', 0, 64)
	neg := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	var b strings.Builder
	for i, c := range raw {
		if i > 0 && (len(raw)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if neg {
		out = "-" + out
	}
	return sal.CurrencyOrDefault() + " " + out
}

// badgeClass picks a colour for a status or recommendation value.
func badgeClass(v any) string {
	switch fmt.Sprint(v) {
	case "approved", "completed", "accepted", "hired", "strong_yes", "yes", "success", "evaluated":
		return "badge badge-success"
	case "rejected", "failed", "cancelled", "no", "strong_no", "no_show", "overdue":
		return "badge badge-danger"
	case "pending", "queued", "processing", "pending_approval", "in_progress", "rescheduled", "neutral":
		return "badge badge-warning"
	case "sent", "scheduled", "shortlisted", "assessment", "interview", "offer":
		return "badge badge-info"
	default:
		return "badge"
	}
}
