package types

// CandidateStatus is the application status of a candidate.
type CandidateStatus string

const (
	CandidateNew         CandidateStatus = "new"
	CandidateScreening   CandidateStatus = "screening"
	CandidateShortlisted CandidateStatus = "shortlisted"
	CandidateAssessment  CandidateStatus = "assessment"
	CandidateInterview   CandidateStatus = "interview"
	CandidateOffer       CandidateStatus = "offer"
	CandidateRejected    CandidateStatus = "rejected"
	CandidateHired       CandidateStatus = "hired"
)

func (s CandidateStatus) IsKnown() bool {
	return oneOf(s, CandidateNew, CandidateScreening, CandidateShortlisted, CandidateAssessment,
		CandidateInterview, CandidateOffer, CandidateRejected, CandidateHired)
}

// Experience is one position on a resume.
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
}

// Education is one qualification. The intake service uses institution/fieldOfStudy,
// the assessment service school/field.
type Education struct {
	School       string `json:"school,omitempty"`
	Institution  string `json:"institution,omitempty"`
	Degree       string `json:"degree"`
	Field        string `json:"field,omitempty"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	Year         string `json:"year,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
}

// Place returns the school or institution name.
func (e Education) Place() string {
	if e.Institution != "" {
		return e.Institution
	}
	return e.School
}

// Subject returns the field of study.
func (e Education) Subject() string {
	if e.FieldOfStudy != "" {
		return e.FieldOfStudy
	}
	return e.Field
}

// Project is a portfolio entry on a resume.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

// Candidate is an applicant produced by the intake process.
type Candidate struct {
	IDs
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Resume        string          `json:"resume,omitempty"`
	Skills        []string        `json:"skills,omitempty"`
	Summary       string          `json:"summary,omitempty"`
	Experience    []Experience    `json:"experience,omitempty"`
	Education     []Education     `json:"education,omitempty"`
	Projects      []Project       `json:"projects,omitempty"`
	Interests     []string        `json:"interests,omitempty"`
	JobID         string          `json:"job_id,omitempty"`
	MatchScore    float64         `json:"matchScore,omitempty"`
	MatchedSkills []string        `json:"matchedSkills,omitempty"`
	Status        CandidateStatus `json:"status,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// SkillsMatch compares required skills with the resume.
type SkillsMatch struct {
	Required        []string `json:"required"`
	Matched         []string `json:"matched"`
	MatchPercentage float64  `json:"matchPercentage"`
}

// AIEvaluation is the screening service verdict on a resume.
type AIEvaluation struct {
	Score          float64 `json:"score"`
	Confidence     float64 `json:"confidence"`
	Recommendation string  `json:"recommendation"`
	Reasoning      string  `json:"reasoning"`
	EvaluatedAt    string  `json:"evaluatedAt"`
}

// ShortlistedCandidate is the resume screening view of a candidate.
type ShortlistedCandidate struct {
	IDs
	Candidate     Ref[Candidate] `json:"candidateId"`
	JobID         string         `json:"jobId"`
	MatchScore    float64        `json:"matchScore,omitempty"`
	SkillsMatch   *SkillsMatch   `json:"skillsMatch,omitempty"`
	Status        string         `json:"status"`
	LoginID       string         `json:"loginId,omitempty"`
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	CreatedAt     string         `json:"createdAt,omitempty"`
	ShortlistedAt string         `json:"shortlistedAt,omitempty"`
	AIEvaluation  *AIEvaluation  `json:"aiEvaluation,omitempty"`
}

// Score returns the AI evaluation score, or 0 when not evaluated.
func (s ShortlistedCandidate) Score() float64 {
	if s.AIEvaluation == nil {
		return 0
	}
	return s.AIEvaluation.Score
}

// ShortlistThreshold is the minimum AI score for a candidate to be sent an assessment.
const ShortlistThreshold = 70

// ShortlistRequest starts screening for a job description.
type ShortlistRequest struct {
	JDID string `json:"jdId" validate:"required"`
}
