package types

// InterviewStatus is the state of a scheduled interview.
type InterviewStatus string

const (
	InterviewScheduled   InterviewStatus = "scheduled"
	InterviewCompleted   InterviewStatus = "completed"
	InterviewCancelled   InterviewStatus = "cancelled"
	InterviewRescheduled InterviewStatus = "rescheduled"
	InterviewNoShow      InterviewStatus = "no_show"
)

func (s InterviewStatus) IsKnown() bool {
	return oneOf(s, InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow)
}

// InterviewStatuses lists every status in display order.
var InterviewStatuses = []InterviewStatus{
	InterviewScheduled, InterviewCompleted, InterviewCancelled, InterviewRescheduled, InterviewNoShow,
}

// InterviewMode is online or onsite.
type InterviewMode string

const (
	ModeOnline InterviewMode = "online"
	ModeOnsite InterviewMode = "onsite"
)

// InterviewRound identifies the interview stage.
type InterviewRound string

const (
	RoundTechnical  InterviewRound = "technical"
	RoundHR         InterviewRound = "hr"
	RoundManagerial InterviewRound = "managerial"
	RoundFinal      InterviewRound = "final"
)

// InterviewFeedback is the interviewer's verdict.
type InterviewFeedback struct {
	InterviewerID  string         `json:"interviewer_id,omitempty"`
	Comments       string         `json:"comments"`
	Rating         int            `json:"rating"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
}

// Interview is a scheduled interview. Candidate and job references may be populated.
type Interview struct {
	IDs
	Candidate       Ref[Candidate]     `json:"candidate_id"`
	Job             Ref[JobSummary]    `json:"job_id"`
	InterviewerIDs  []string           `json:"interviewer_ids"`
	Round           InterviewRound     `json:"round,omitempty"`
	ScheduledTime   string             `json:"scheduled_time,omitempty"`
	DurationMinutes int                `json:"duration_minutes,omitempty"`
	Mode            InterviewMode      `json:"mode"`
	MeetingLink     string             `json:"meeting_link,omitempty"`
	Status          InterviewStatus    `json:"status"`
	Feedback        *InterviewFeedback `json:"feedback,omitempty"`
	CreatedAt       string             `json:"created_at,omitempty"`
	UpdatedAt       string             `json:"updated_at,omitempty"`
}

// CandidateName returns the populated candidate name or the raw id.
func (i Interview) CandidateName() string {
	if i.Candidate.Value != nil && i.Candidate.Value.Name != "" {
		return i.Candidate.Value.Name
	}
	return i.Candidate.ID
}

// JobTitle returns the populated job title or the raw id.
func (i Interview) JobTitle() string {
	if i.Job.Value != nil && i.Job.Value.Title != "" {
		return i.Job.Value.Title
	}
	return i.Job.ID
}

// CreateInterviewRequest schedules an interview for one candidate, or for every
// shortlisted candidate of a job when Batch is set.
type CreateInterviewRequest struct {
	CandidateID     string        `json:"candidate_id,omitempty" validate:"required_without=Batch"`
	JobID           string        `json:"job_id" validate:"required"`
	InterviewerIDs  []string      `json:"interviewer_ids"`
	Mode            InterviewMode `json:"mode" validate:"required,oneof=online onsite"`
	ScheduledTime   string        `json:"scheduled_time,omitempty"`
	DurationMinutes int           `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	MeetingLink     string        `json:"meeting_link,omitempty" validate:"omitempty,url"`
	Batch           bool          `json:"batch,omitempty"`
}

// Validate validates the CreateInterviewRequest.
func (r *CreateInterviewRequest) Validate() error {
	return validate.Struct(r)
}

// CreateInterviewResponse is returned by POST /is/create.
type CreateInterviewResponse struct {
	Success        bool       `json:"success"`
	Message        string     `json:"message"`
	Interview      *Interview `json:"interview,omitempty"`
	ScheduledCount int        `json:"scheduled_count,omitempty"`
}

// ListInterviewsParams filters GET /is/list. Empty fields are omitted.
type ListInterviewsParams struct {
	UserID string          `json:"user_id,omitempty"`
	Role   Role            `json:"role,omitempty"`
	Status InterviewStatus `json:"status,omitempty"`
}

// InterviewList is returned by GET /is/list.
type InterviewList struct {
	Success    bool        `json:"success"`
	Interviews []Interview `json:"interviews"`
}

// UpdateInterviewStatusRequest is sent to PUT /is/status/{id}.
type UpdateInterviewStatusRequest struct {
	Status InterviewStatus `json:"status" validate:"required,oneof=scheduled completed cancelled rescheduled no_show"`
}

// Validate validates the UpdateInterviewStatusRequest.
func (r *UpdateInterviewStatusRequest) Validate() error {
	return validate.Struct(r)
}

// SubmitFeedbackRequest is sent to POST /is/feedback/{id}.
type SubmitFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

// Validate validates the SubmitFeedbackRequest.
func (r *SubmitFeedbackRequest) Validate() error {
	return validate.Struct(r)
}

// InterviewResponse is returned by status and feedback updates.
type InterviewResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Interview *Interview `json:"interview"`
}
