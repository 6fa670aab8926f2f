package types

// OfferStatus is the lifecycle of an offer.
type OfferStatus string

const (
	OfferDraft           OfferStatus = "draft"
	OfferPendingApproval OfferStatus = "pending_approval"
	OfferApproved        OfferStatus = "approved"
	OfferSent            OfferStatus = "sent"
	OfferAccepted        OfferStatus = "accepted"
	OfferRejected        OfferStatus = "rejected"
)

func (s OfferStatus) IsKnown() bool {
	return oneOf(s, OfferDraft, OfferPendingApproval, OfferApproved, OfferSent, OfferAccepted, OfferRejected)
}

// OfferStatuses lists every status in display order.
var OfferStatuses = []OfferStatus{
	OfferDraft, OfferPendingApproval, OfferApproved, OfferSent, OfferAccepted, OfferRejected,
}

// Salary is an offered amount.
type Salary struct {
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	BenchmarkPosition float64 `json:"benchmark_position,omitempty"`
}

// CurrencyOrDefault returns the currency code, INR when absent.
func (s Salary) CurrencyOrDefault() string {
	if s.Currency == "" {
		return "INR"
	}
	return s.Currency
}

// Approval is one step of an offer's approval chain.
type Approval struct {
	ApproverID string         `json:"approver_id"`
	Level      int            `json:"level"`
	Status     ApprovalStatus `json:"status"`
	ActedAt    string         `json:"acted_at,omitempty"`
}

// Offer is an employment offer.
type Offer struct {
	IDs
	Candidate       Ref[Candidate]  `json:"candidate_id"`
	Job             Ref[JobSummary] `json:"job_id"`
	OfferLetterText string          `json:"offer_letter_text"`
	SalaryOffered   Salary          `json:"salary_offered"`
	Status          OfferStatus     `json:"status"`
	SignatureLink   string          `json:"signature_link,omitempty"`
	SentAt          string          `json:"sent_at,omitempty"`
	AcceptedAt      string          `json:"accepted_at,omitempty"`
	RejectedAt      string          `json:"rejected_at,omitempty"`
	ApprovalChain   []Approval      `json:"approval_chain,omitempty"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

// CanResend reports whether the resend action is offered. Only sent offers qualify.
func (o Offer) CanResend() bool {
	return o.Status == OfferSent
}

// CandidateName returns the populated candidate name or the raw id.
func (o Offer) CandidateName() string {
	if o.Candidate.Value != nil && o.Candidate.Value.Name != "" {
		return o.Candidate.Value.Name
	}
	return o.Candidate.ID
}

// JobTitle returns the populated job title or the raw id.
func (o Offer) JobTitle() string {
	if o.Job.Value != nil && o.Job.Value.Title != "" {
		return o.Job.Value.Title
	}
	return o.Job.ID
}

// CreateOfferRequest is sent to POST /oo/create.
type CreateOfferRequest struct {
	CandidateID    string  `json:"candidate_id" validate:"required"`
	JobID          string  `json:"job_id" validate:"required"`
	BaseSalary     float64 `json:"baseSalary" validate:"required,gt=0"`
	PositionTitle  string  `json:"positionTitle" validate:"required"`
	CandidateEmail string  `json:"candidate_email" validate:"required,email"`
}

// Validate validates the CreateOfferRequest.
func (r *CreateOfferRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateOfferStatusRequest is sent to PUT /oo/status/{id}.
type UpdateOfferStatusRequest struct {
	Status OfferStatus `json:"status" validate:"required,oneof=draft pending_approval approved sent accepted rejected"`
}

// Validate validates the UpdateOfferStatusRequest.
func (r *UpdateOfferStatusRequest) Validate() error {
	return validate.Struct(r)
}

// OfferResponse wraps a single offer.
type OfferResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Offer   *Offer `json:"offer"`
}

// OfferList is returned by GET /oo/list.
type OfferList struct {
	Success bool    `json:"success"`
	Offers  []Offer `json:"offers"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TaskStatus is the state of an onboarding task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskOverdue    TaskStatus = "overdue"
)

func (s TaskStatus) IsKnown() bool {
	return oneOf(s, TaskPending, TaskInProgress, TaskCompleted, TaskOverdue)
}

// OnboardingTask is a task assigned to a hired candidate.
type OnboardingTask struct {
	IDs
	CandidateID     string     `json:"candidate_id"`
	OfferID         string     `json:"offer_id"`
	TaskTitle       string     `json:"task_title"`
	TaskDescription string     `json:"task_description"`
	DueDate         string     `json:"due_date"`
	Status          TaskStatus `json:"status"`
	CreatedAt       string     `json:"createdAt,omitempty"`
	UpdatedAt       string     `json:"updatedAt,omitempty"`
}

// CreateOnboardingTaskRequest is sent to POST /oo/onboarding/create.
type CreateOnboardingTaskRequest struct {
	CandidateID     string `json:"candidate_id" validate:"required"`
	OfferID         string `json:"offer_id" validate:"required"`
	TaskTitle       string `json:"task_title" validate:"required"`
	TaskDescription string `json:"task_description"`
	DueDate         string `json:"due_date" validate:"required,datetime=2006-01-02"`
}

// Validate validates the CreateOnboardingTaskRequest.
func (r *CreateOnboardingTaskRequest) Validate() error {
	return validate.Struct(r)
}

// TaskResponse is returned by POST /oo/onboarding/create.
type TaskResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Task    *OnboardingTask `json:"task"`
}

// TaskList is returned by GET /oo/onboarding/{candidateID}.
type TaskList struct {
	Success bool             `json:"success"`
	Tasks   []OnboardingTask `json:"tasks"`
}
