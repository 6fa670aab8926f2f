// Package observability provides formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/recruit-portal/internal/testsession"
	"github.com/jonathan/recruit-portal/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow caps nested lists such as skills and highlights
	maxItemsToShow = 5
)

// Printer renders backend records as boxed text.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// printEmpty prints a single-line box.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printEmpty(msg string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, msg)
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// joinCapped joins the first maxItemsToShow items and notes the rest.
func joinCapped(items []string) string {
	if len(items) <= maxItemsToShow {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:maxItemsToShow], ", "), len(items)-maxItemsToShow)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// PrintUser outputs the signed-in account.
func (p *Printer) PrintUser(u *types.User) {
	if u == nil {
		p.printEmpty("Not signed in")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:   %s\n", u.Name))
	sb.WriteString(fmt.Sprintf("Email:  %s\n", u.Email))
	sb.WriteString(fmt.Sprintf("Role:   %s\n", u.Role))
	sb.WriteString(fmt.Sprintf("ID:     %s", u.Key()))
	if u.Department != "" {
		sb.WriteString(fmt.Sprintf("\nDept:   %s", u.Department))
	}
	p.printBox("SIGNED IN", sb.String())
}

// PrintJDs outputs one line per job description with its approval state.
func (p *Printer) PrintJDs(jds []types.JobDescription) {
	if len(jds) == 0 {
		p.printEmpty("No job descriptions found")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total: %d\n\n", len(jds)))
	for i, jd := range jds {
		sb.WriteString(fmt.Sprintf("• %s\n", jd.Title()))
		sb.WriteString(fmt.Sprintf("  %s  approval=%s  status=%s", jd.Key(), orDash(string(jd.ApprovalStatus)), orDash(string(jd.Status))))
		if i < len(jds)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("JOB DESCRIPTIONS", sb.String())
}

// PrintJD outputs the generated content of one job description.
func (p *Printer) PrintJD(jd *types.JobDescription) {
	if jd == nil {
		return
	}
	ai := jd.AIResponse

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:        %s\n", jd.Key()))
	sb.WriteString(fmt.Sprintf("Company:   %s\n", orDash(ai.Company)))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", orDash(ai.Location)))
	sb.WriteString(fmt.Sprintf("Type:      %s\n", orDash(ai.EmploymentType)))
	sb.WriteString(fmt.Sprintf("Salary:    %s\n", orDash(ai.SalaryRange)))
	sb.WriteString(fmt.Sprintf("Approval:  %s\n", orDash(string(jd.ApprovalStatus))))
	if len(ai.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:    %s\n", joinCapped(ai.Skills)))
	}
	if ai.AIMetadata.ShortSummary != "" {
		sb.WriteString("\n" + ai.AIMetadata.ShortSummary + "\n")
	}
	for _, post := range jd.PlatformPosts {
		mark := "✓"
		if !post.Success {
			mark = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s posted to %s %s\n", mark, post.Platform, post.Message))
	}
	p.printBox(strings.ToUpper(jd.Title()), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintScreened outputs resume screening results with AI scores.
func (p *Printer) PrintScreened(cands []types.ShortlistedCandidate) {
	if len(cands) == 0 {
		p.printEmpty("No screened candidates")
		return
	}

	var sb strings.Builder
	for i, c := range cands {
		sb.WriteString(fmt.Sprintf("• %s <%s>\n", orDash(c.Name), c.Email))
		sb.WriteString(fmt.Sprintf("  score=%.0f  status=%s", c.Score(), orDash(c.Status)))
		if c.SkillsMatch != nil && len(c.SkillsMatch.Matched) > 0 {
			sb.WriteString(fmt.Sprintf("\n  matched: %s", joinCapped(c.SkillsMatch.Matched)))
		}
		if i < len(cands)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("SCREENED CANDIDATES", sb.String())
}

// PrintAssessments outputs scored assessments with pass/fail marks.
func (p *Printer) PrintAssessments(list []types.AssessmentShortlisted) {
	if len(list) == 0 {
		p.printEmpty("No assessed candidates")
		return
	}

	var sb strings.Builder
	for i, a := range list {
		mark := "✗"
		if a.Passed() {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s  %s\n", mark, orDash(a.Profile().Name), a.JobTitle()))
		sb.WriteString(fmt.Sprintf("  %s  %.1f%% (pass %.0f%%)", a.Key(), a.Percentage, a.Passing()))
		if rec := a.Recommendation(); rec != "" {
			sb.WriteString("  " + types.Humanize(string(rec)))
		}
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("ASSESSMENTS", sb.String())
}

// PrintInterviews outputs scheduled interviews.
func (p *Printer) PrintInterviews(list []types.Interview) {
	if len(list) == 0 {
		p.printEmpty("No interviews found")
		return
	}

	var sb strings.Builder
	for i, iv := range list {
		sb.WriteString(fmt.Sprintf("• %s  %s\n", orDash(iv.CandidateName()), iv.JobTitle()))
		sb.WriteString(fmt.Sprintf("  %s  %s  %s  %s", iv.Key(), orDash(iv.ScheduledTime), iv.Mode, iv.Status))
		if iv.Feedback != nil {
			sb.WriteString(fmt.Sprintf("\n  feedback: %d/5 %s", iv.Feedback.Rating, iv.Feedback.Comments))
		}
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("INTERVIEWS", sb.String())
}

// PrintOffers outputs offers with their salary and status.
func (p *Printer) PrintOffers(list []types.Offer) {
	if len(list) == 0 {
		p.printEmpty("No offers found")
		return
	}

	var sb strings.Builder
	for i, o := range list {
		sb.WriteString(fmt.Sprintf("• %s  %s\n", orDash(o.CandidateName()), o.JobTitle()))
		sb.WriteString(fmt.Sprintf("  %s  %s %.0f  %s", o.Key(), o.SalaryOffered.CurrencyOrDefault(), o.SalaryOffered.Amount, types.Humanize(string(o.Status))))
		if i < len(list)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("OFFERS", sb.String())
}

// PrintTasks outputs onboarding tasks for one candidate.
func (p *Printer) PrintTasks(tasks []types.OnboardingTask) {
	if len(tasks) == 0 {
		p.printEmpty("No onboarding tasks")
		return
	}

	var sb strings.Builder
	for i, t := range tasks {
		sb.WriteString(fmt.Sprintf("• %s  (due %s, %s)", t.TaskTitle, orDash(t.DueDate), types.Humanize(string(t.Status))))
		if t.TaskDescription != "" {
			sb.WriteString("\n  " + t.TaskDescription)
		}
		if i < len(tasks)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("ONBOARDING TASKS", sb.String())
}

// PrintQuestion outputs the current question of a running test with the
// time left and the options lettered from A.
func (p *Printer) PrintQuestion(snap testsession.Snapshot) {
	if snap.Question == nil {
		p.printEmpty("This test has no questions")
		return
	}
	q := snap.Question

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Time left: %s", snap.Clock))
	if snap.Hurry {
		sb.WriteString("  (hurry)")
	}
	sb.WriteString(fmt.Sprintf("   Answered: %d/%d\n\n", snap.Answered, snap.Total))
	sb.WriteString(wrap(q.QuestionText, boxWidth-4))
	sb.WriteString("\n\n")
	for i, opt := range q.Options {
		marker := " "
		if opt == snap.Answer {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %c) %s\n", marker, 'A'+i, opt))
	}
	p.printBox(fmt.Sprintf("QUESTION %d OF %d", snap.Current+1, snap.Total), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSubmitResult outputs the scoring service reply.
func (p *Printer) PrintSubmitResult(res *types.SubmitResponse) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(orDash(res.Message))
	if res.Score != nil {
		sb.WriteString(fmt.Sprintf("\nScore: %.1f (%.1f%%)", res.Score.TotalScore, res.Score.Percentage))
	}
	p.printBox("SUBMITTED", sb.String())
}

// wrap breaks s into lines no longer than width, splitting on spaces.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var sb strings.Builder
	line := 0
	for i, w := range words {
		n := len([]rune(w))
		if i > 0 {
			if line+1+n > width {
				sb.WriteString("\n")
				line = 0
			} else {
				sb.WriteString(" ")
				line++
			}
		}
		sb.WriteString(w)
		line += n
	}
	return sb.String()
}
