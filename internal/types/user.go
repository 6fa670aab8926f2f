package types

// Role is the user's role as reported by the auth service.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleHR          Role = "hr"
	RoleCandidate   Role = "candidate"
	RoleInterviewer Role = "interviewer"
)

// IsKnown reports whether the portal routes this role anywhere.
func (r Role) IsKnown() bool {
	return oneOf(r, RoleAdmin, RoleHR, RoleCandidate, RoleInterviewer)
}

// User is the authenticated account.
type User struct {
	IDs
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        Role     `json:"role"`
	Avatar      string   `json:"avatar,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Department  string   `json:"department,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// LoginRequest is sent to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the LoginRequest.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// RegisterRequest is sent to POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,oneof=hr candidate"`
}

// Validate validates the RegisterRequest.
func (r *RegisterRequest) Validate() error {
	return validate.Struct(r)
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}

// ValidateResponse is returned by GET /auth/validate.
type ValidateResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
