package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/recruit-portal/internal/testsession"
	"github.com/jonathan/recruit-portal/internal/types"
)

func TestPrintUser(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUser(&types.User{IDs: types.IDs{ID: "u1"}, Name: "Hana", Email: "hana@example.com", Role: types.RoleHR})
	output := buf.String()

	assert.Contains(t, output, "SIGNED IN")
	assert.Contains(t, output, "hana@example.com")
	assert.Contains(t, output, "hr")
	assert.Contains(t, output, "u1")
	assert.NotContains(t, output, "Dept:")
}

func TestPrintUser_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintUser(nil)

	assert.Contains(t, buf.String(), "Not signed in")
}

func TestPrintJDs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJDs([]types.JobDescription{
		{IDs: types.IDs{ID: "jd1"}, AIResponse: types.AIResponse{JobTitle: "Backend Engineer"}, ApprovalStatus: types.ApprovalApproved, Status: types.JDCompleted},
		{IDs: types.IDs{AltID: "jd2"}, Status: types.JDQueued},
	})
	output := buf.String()

	assert.Contains(t, output, "JOB DESCRIPTIONS")
	assert.Contains(t, output, "Total: 2")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "approval=approved")
	assert.Contains(t, output, "Untitled role")
	assert.Contains(t, output, "jd2  approval=-  status=queued")
}

func TestPrintJDs_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJDs(nil)

	assert.Contains(t, buf.String(), "No job descriptions found")
}

func TestPrintJD(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintJD(&types.JobDescription{
		IDs: types.IDs{ID: "jd1"},
		AIResponse: types.AIResponse{
			JobTitle: "Data Engineer",
			Company:  "Acme",
			Skills:   []string{"Go", "SQL", "Kafka", "Spark", "Airflow", "dbt", "Flink"},
		},
		PlatformPosts: []types.PlatformPost{
			{Platform: "linkedin", Success: true, Message: "ok"},
			{Platform: "naukri", Success: false, Message: "rate limited"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "DATA ENGINEER")
	assert.Contains(t, output, "Acme")
	assert.Contains(t, output, "Go, SQL, Kafka, Spark, Airflow (+2 more)")
	assert.Contains(t, output, "✓ posted to linkedin")
	assert.Contains(t, output, "✗ posted to naukri rate limited")
}

func TestPrintJD_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJD(nil)

	assert.Empty(t, buf.String())
}

func TestPrintAssessments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAssessments([]types.AssessmentShortlisted{
		{
			IDs:        types.IDs{ID: "s1"},
			Candidate:  types.Ref[types.Candidate]{Value: &types.Candidate{Name: "Asha Rao"}},
			Job:        types.Ref[types.JobSummary]{ID: "jd1"},
			Percentage: 85,
			AIAnalysis: &types.AIAnalysis{FinalRecommendation: types.StrongYes},
		},
		{IDs: types.IDs{ID: "s2"}, Percentage: 40, PassingScore: 50},
	})
	output := buf.String()

	assert.Contains(t, output, "✓ Asha Rao  jd1")
	assert.Contains(t, output, "85.0% (pass 80%)")
	assert.Contains(t, output, "Strong yes")
	assert.Contains(t, output, "40.0% (pass 50%)")
	assert.Contains(t, output, "✗ -")
}

func TestPrintInterviewsAndOffers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintInterviews([]types.Interview{{
		IDs:       types.IDs{ID: "i1"},
		Candidate: types.Ref[types.Candidate]{ID: "c1"},
		Mode:      types.ModeOnline,
		Status:    types.InterviewScheduled,
		Feedback:  &types.InterviewFeedback{Rating: 4, Comments: "solid"},
	}})
	p.PrintOffers([]types.Offer{{
		IDs:           types.IDs{ID: "o1"},
		SalaryOffered: types.Salary{Amount: 1200000},
		Status:        types.OfferPendingApproval,
	}})
	output := buf.String()

	assert.Contains(t, output, "INTERVIEWS")
	assert.Contains(t, output, "i1  -  online  scheduled")
	assert.Contains(t, output, "feedback: 4/5 solid")
	assert.Contains(t, output, "OFFERS")
	assert.Contains(t, output, "o1  INR 1200000  Pending approval")
}

func TestPrintTasks_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTasks(nil)

	assert.Contains(t, buf.String(), "No onboarding tasks")
}

func TestPrintQuestion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	q := types.Question{QuestionID: "q1", QuestionText: "What does defer do?", Options: []string{"Runs later", "Panics"}}
	p.PrintQuestion(testsession.Snapshot{
		Clock:    "4:59",
		Hurry:    true,
		Current:  0,
		Total:    3,
		Answered: 1,
		Question: &q,
		Answer:   "Panics",
	})
	output := buf.String()

	assert.Contains(t, output, "QUESTION 1 OF 3")
	assert.Contains(t, output, "Time left: 4:59  (hurry)")
	assert.Contains(t, output, "Answered: 1/3")
	assert.Contains(t, output, "  A) Runs later")
	assert.Contains(t, output, "* B) Panics")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("T", strings.Repeat("x", 200))
	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)))
	}
	assert.Contains(t, buf.String(), "...")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "", wrap("   ", 10))
	assert.Equal(t, "one two\nthree", wrap("one two three", 8))
	assert.Equal(t, "averyveryverylongword", wrap("averyveryverylongword", 5))
}
