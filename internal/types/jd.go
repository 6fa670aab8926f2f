package types

// JDStatus is the AI generation lifecycle of a job description.
type JDStatus string

const (
	JDQueued     JDStatus = "queued"
	JDProcessing JDStatus = "processing"
	JDCompleted  JDStatus = "completed"
	JDFailed     JDStatus = "failed"
)

func (s JDStatus) IsKnown() bool {
	return oneOf(s, JDQueued, JDProcessing, JDCompleted, JDFailed)
}

// ApprovalStatus is the HR approval state of a job description.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsKnown() bool {
	return oneOf(s, ApprovalPending, ApprovalApproved, ApprovalRejected)
}

// AIMetadata is marketing copy generated alongside the description.
type AIMetadata struct {
	ShortSummary string   `json:"shortSummary"`
	Highlights   []string `json:"highlights"`
	Hashtags     []string `json:"hashtags"`
}

// AIResponse is the generated content of a job description.
type AIResponse struct {
	JobTitle       string     `json:"jobTitle"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employmentType"`
	Skills         []string   `json:"skills"`
	Experience     string     `json:"experience"`
	SalaryRange    string     `json:"salaryRange"`
	AIMetadata     AIMetadata `json:"aiMetadata"`
}

// PlatformPost records one attempt to publish a job description.
type PlatformPost struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Status   string `json:"status"`
	PostedAt string `json:"postedAt"`
}

// JobDescription is an AI-generated job description.
type JobDescription struct {
	IDs
	UserID         string         `json:"userId,omitempty"`
	Prompt         string         `json:"prompt"`
	AIResponse     AIResponse     `json:"aiResponse"`
	Status         JDStatus       `json:"status"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
	PlatformPosts  []PlatformPost `json:"platformPosts,omitempty"`
	CreatedAt      string         `json:"createdAt,omitempty"`
	UpdatedAt      string         `json:"updatedAt,omitempty"`
}

// Title returns the generated title, or a placeholder while generation is pending.
func (jd JobDescription) Title() string {
	if jd.AIResponse.JobTitle != "" {
		return jd.AIResponse.JobTitle
	}
	return "Untitled role"
}

// CanPost reports whether the "post to platforms" action applies.
func (jd JobDescription) CanPost() bool {
	return jd.ApprovalStatus == ApprovalApproved
}

// JobSummary is the populated form of a job reference.
type JobSummary struct {
	IDs
	Title string `json:"title"`
}

// CreateJDRequest asks the generation service for a new description.
type CreateJDRequest struct {
	Prompt string `json:"prompt" validate:"required,min=20"`
}

// Validate validates the CreateJDRequest.
func (r *CreateJDRequest) Validate() error {
	return validate.Struct(r)
}

// UpdateJDRequest carries the editable fields of a job description.
type UpdateJDRequest struct {
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus,omitempty" validate:"omitempty,oneof=pending approved rejected"`
}

// Validate validates the UpdateJDRequest.
func (r *UpdateJDRequest) Validate() error {
	return validate.Struct(r)
}

// PostJDRequest lists the platforms to publish to.
type PostJDRequest struct {
	Platforms []string `json:"platforms" validate:"required,min=1,dive,required"`
}

// Validate validates the PostJDRequest.
func (r *PostJDRequest) Validate() error {
	return validate.Struct(r)
}

// JDList is the GET /jd/getAll envelope.
type JDList struct {
	Count int              `json:"count"`
	JDs   []JobDescription `json:"jds"`
}
