package types

// TestStatus is the lifecycle of an assessment.
type TestStatus string

const (
	TestPending    TestStatus = "pending"
	TestInProgress TestStatus = "in_progress"
	TestCompleted  TestStatus = "completed"
	TestEvaluated  TestStatus = "evaluated"
)

func (s TestStatus) IsKnown() bool {
	return oneOf(s, TestPending, TestInProgress, TestCompleted, TestEvaluated)
}

// TestType is the kind of assessment to generate.
type TestType string

const (
	TestMCQ           TestType = "MCQ"
	TestCoding        TestType = "Coding"
	TestAptitude      TestType = "Aptitude"
	TestCommunication TestType = "Communication"
	TestCustom        TestType = "Custom"
)

func (t TestType) IsKnown() bool {
	return oneOf(t, TestMCQ, TestCoding, TestAptitude, TestCommunication, TestCustom)
}

// Recommendation is a hire/no-hire verdict.
type Recommendation string

const (
	StrongYes Recommendation = "strong_yes"
	Yes       Recommendation = "yes"
	Neutral   Recommendation = "neutral"
	No        Recommendation = "no"
	StrongNo  Recommendation = "strong_no"
)

func (r Recommendation) IsKnown() bool {
	return oneOf(r, StrongYes, Yes, Neutral, No, StrongNo)
}

// Positive reports whether the verdict is yes or strong yes.
func (r Recommendation) Positive() bool {
	return r == Yes || r == StrongYes
}

// Question is one assessment question. The candidate view never carries
// the correct answer.
type Question struct {
	QuestionID     string   `json:"question_id"`
	QuestionText   string   `json:"question_text"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correct_answer,omitempty"`
	SelectedAnswer string   `json:"selected_answer,omitempty"`
	IsCorrect      *bool    `json:"is_correct,omitempty"`
	Marks          float64  `json:"marks"`
}

// Assessment is a generated test.
type Assessment struct {
	IDs
	CandidateID     string     `json:"candidate_id"`
	JobID           string     `json:"job_id"`
	Questions       []Question `json:"questions"`
	TestStatus      TestStatus `json:"test_status"`
	TotalMarks      float64    `json:"total_marks"`
	TestType        string     `json:"test_type"`
	StartedAt       string     `json:"started_at,omitempty"`
	CompletedAt     string     `json:"completed_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	CreatedAt       string     `json:"created_at,omitempty"`
	UpdatedAt       string     `json:"updated_at,omitempty"`
}

// CandidateView returns a copy with correct answers removed.
func (a Assessment) CandidateView() Assessment {
	out := a
	out.Questions = make([]Question, len(a.Questions))
	for i, q := range a.Questions {
		q.CorrectAnswer = ""
		q.IsCorrect = nil
		out.Questions[i] = q
	}
	return out
}

// AssessmentInit asks the assessment service to generate a test.
type AssessmentInit struct {
	CandidateID string   `json:"candidate_id" validate:"required"`
	JobID       string   `json:"job_id" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Skills      []string `json:"skills"`
	TestType    TestType `json:"test_type,omitempty" validate:"omitempty,oneof=MCQ Coding Aptitude Communication Custom"`
}

// Validate validates the AssessmentInit.
func (r *AssessmentInit) Validate() error {
	return validate.Struct(r)
}

// InitResponse is returned by POST /ca/init.
type InitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TestID  string `json:"test_id"`
	Status  string `json:"status"`
}

// TestResponse is returned by the test lookups.
type TestResponse struct {
	Success bool        `json:"success"`
	Test    *Assessment `json:"test"`
}

// AnswerRecord is one submitted answer. Unanswered questions carry "".
type AnswerRecord struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// SubmitAssessmentRequest is sent to POST /ca/submit.
type SubmitAssessmentRequest struct {
	TestID    string         `json:"test_id"`
	Responses []AnswerRecord `json:"responses"`
}

// AIAnalysis holds the scoring service sub-scores in [0,1].
type AIAnalysis struct {
	ConfidenceScore     float64        `json:"confidence_score,omitempty"`
	CommunicationScore  float64        `json:"communication_score,omitempty"`
	CodingEfficiency    float64        `json:"coding_efficiency,omitempty"`
	FinalRecommendation Recommendation `json:"final_recommendation,omitempty"`
}

// CandidateScore is the result of one submitted assessment.
type CandidateScore struct {
	IDs
	CandidateID string      `json:"candidate_id"`
	JobID       string      `json:"job_id"`
	TestID      string      `json:"test_id"`
	TotalScore  float64     `json:"total_score"`
	Percentage  float64     `json:"percentage"`
	AIAnalysis  *AIAnalysis `json:"ai_analysis,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
}

// SubmitResponse is returned by POST /ca/submit.
type SubmitResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Score   *CandidateScore `json:"score"`
}

// SectionScore is the per-section breakdown of a scored test.
type SectionScore struct {
	SectionName       string  `json:"section_name"`
	MaxMarks          float64 `json:"max_marks"`
	ObtainedMarks     float64 `json:"obtained_marks"`
	AIScoreAdjustment float64 `json:"ai_score_adjustment,omitempty"`
}

// DefaultPassingScore applies when the backend does not send one.
const DefaultPassingScore = 80

// AssessmentShortlisted is the scored-assessment view of a candidate.
type AssessmentShortlisted struct {
	IDs
	Candidate     Ref[Candidate]  `json:"candidate_id"`
	Job           Ref[JobSummary] `json:"job_id"`
	TestID        string          `json:"test_id,omitempty"`
	TotalScore    float64         `json:"total_score"`
	Percentage    float64         `json:"percentage"`
	PassingScore  float64         `json:"passing_score,omitempty"`
	SectionScores []SectionScore  `json:"section_scores,omitempty"`
	AIAnalysis    *AIAnalysis     `json:"ai_analysis,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// Profile returns the populated candidate, or an empty one.
func (a AssessmentShortlisted) Profile() Candidate {
	if a.Candidate.Value != nil {
		return *a.Candidate.Value
	}
	return Candidate{}
}

// JobTitle returns the populated job title or the raw id.
func (a AssessmentShortlisted) JobTitle() string {
	if a.Job.Value != nil && a.Job.Value.Title != "" {
		return a.Job.Value.Title
	}
	return a.Job.ID
}

// Passing returns the passing score, defaulting to DefaultPassingScore.
func (a AssessmentShortlisted) Passing() float64 {
	if a.PassingScore > 0 {
		return a.PassingScore
	}
	return DefaultPassingScore
}

// Passed reports whether the percentage meets the passing score.
func (a AssessmentShortlisted) Passed() bool {
	return a.Percentage >= a.Passing()
}

// Recommendation returns the final AI recommendation, or "".
func (a AssessmentShortlisted) Recommendation() Recommendation {
	if a.AIAnalysis == nil {
		return ""
	}
	return a.AIAnalysis.FinalRecommendation
}

// Analysis returns the AI analysis or a zero value.
func (a AssessmentShortlisted) Analysis() AIAnalysis {
	if a.AIAnalysis == nil {
		return AIAnalysis{}
	}
	return *a.AIAnalysis
}

// ShortlistedList is returned by GET /ca/shortlisted.
type ShortlistedList struct {
	Success     bool                    `json:"success"`
	Total       int                     `json:"total"`
	Shortlisted []AssessmentShortlisted `json:"shortlisted"`
}

// ShortlistedDetail is returned by GET /ca/shortlisted/{id}.
type ShortlistedDetail struct {
	Success     bool                   `json:"success"`
	Shortlisted *AssessmentShortlisted `json:"shortlisted"`
}
