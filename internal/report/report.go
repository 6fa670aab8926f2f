// Package report renders assessment results as a plain-text report and as
// an Excel workbook.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/recruit-portal/internal/types"
)

// TimestampLayout formats generation timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

const notAvailable = "N/A"

// AssessmentReport renders the downloadable text report for one scored candidate.
func AssessmentReport(a types.AssessmentShortlisted, now time.Time) string {
	c := a.Profile()
	ai := a.Analysis()

	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n" + title + "\n" + strings.Repeat("=", len(title)) + "\n")
	}

	b.WriteString("ASSESSMENT REPORT\n================\n\n")
	fmt.Fprintf(&b, "Candidate: %s\n", orNA(c.Name))
	fmt.Fprintf(&b, "Email: %s\n", orNA(c.Email))
	fmt.Fprintf(&b, "Phone: %s\n", orNA(c.Phone))

	section("ASSESSMENT SCORES")
	fmt.Fprintf(&b, "Total Score: %s\n", number(a.TotalScore))
	fmt.Fprintf(&b, "Percentage: %.2f%%\n", a.Percentage)
	fmt.Fprintf(&b, "Passing Score: %s\n", number(a.Passing()))

	section("AI ANALYSIS")
	fmt.Fprintf(&b, "Final Recommendation: %s\n", orNA(string(ai.FinalRecommendation)))
	fmt.Fprintf(&b, "Confidence Score: %s\n", ratio(ai.ConfidenceScore))
	fmt.Fprintf(&b, "Communication Score: %s\n", ratio(ai.CommunicationScore))
	fmt.Fprintf(&b, "Coding Efficiency: %s\n", ratio(ai.CodingEfficiency))

	section("CANDIDATE DETAILS")
	fmt.Fprintf(&b, "Skills: %s\n", orNA(strings.Join(c.Skills, ", ")))
	fmt.Fprintf(&b, "Experience: %d positions\n", len(c.Experience))
	fmt.Fprintf(&b, "Education: %d qualifications\n", len(c.Education))

	fmt.Fprintf(&b, "\nGenerated: %s", now.Format(TimestampLayout))
	return b.String()
}

// ReportFilename names the downloaded report.
func ReportFilename(name string, now time.Time) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = "candidate"
	}
	return fmt.Sprintf("assessment_%s_%d.txt", name, now.UnixMilli())
}

// ratio formats a 0..1 score as a percentage with two decimals.
func ratio(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// number prints v without trailing zeros.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
