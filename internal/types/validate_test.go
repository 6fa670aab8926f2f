package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateJDRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		prompt  string
		wantErr bool
	}{
		{"valid", "Senior Go engineer, remote, 5+ years, Postgres", false},
		{"too short", "Go dev", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CreateJDRequest{Prompt: tt.prompt}
			err := r.Validate()
			if tt.wantErr {
				require.Error(t, err)
				fields := FieldErrors(err)
				assert.Contains(t, fields, "prompt")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequest_Validation(t *testing.T) {
	ok := RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1", Role: RoleCandidate}
	assert.NoError(t, ok.Validate())

	bad := RegisterRequest{Name: "A", Email: "nope", Password: "123", Role: RoleAdmin}
	fields := FieldErrors(bad.Validate())
	assert.Equal(t, "Must be at least 2 characters", fields["name"])
	assert.Equal(t, "Enter a valid email address", fields["email"])
	assert.Equal(t, "Must be at least 6 characters", fields["password"])
	assert.Equal(t, "Must be one of: hr candidate", fields["role"])
}

func TestCreateInterviewRequest_Validation(t *testing.T) {
	single := CreateInterviewRequest{CandidateID: "c1", JobID: "j1", Mode: ModeOnline}
	assert.NoError(t, single.Validate())

	batch := CreateInterviewRequest{JobID: "j1", Mode: ModeOnline, Batch: true}
	assert.NoError(t, batch.Validate())

	neither := CreateInterviewRequest{JobID: "j1", Mode: ModeOnline}
	assert.Contains(t, FieldErrors(neither.Validate()), "candidate_id")

	badMode := CreateInterviewRequest{CandidateID: "c1", JobID: "j1", Mode: "phone"}
	assert.Contains(t, FieldErrors(badMode.Validate()), "mode")
}

func TestSubmitFeedbackRequest_Validation(t *testing.T) {
	assert.NoError(t, (&SubmitFeedbackRequest{Feedback: "good", Rating: 5}).Validate())
	assert.Contains(t, FieldErrors((&SubmitFeedbackRequest{Feedback: "good", Rating: 6}).Validate()), "rating")
	assert.Contains(t, FieldErrors((&SubmitFeedbackRequest{Rating: 3}).Validate()), "feedback")
}

func TestCreateOnboardingTaskRequest_Validation(t *testing.T) {
	r := CreateOnboardingTaskRequest{CandidateID: "c", OfferID: "o", TaskTitle: "Laptop", DueDate: "2025-04-01"}
	assert.NoError(t, r.Validate())

	r.DueDate = "next week"
	assert.Equal(t, "Enter a valid date", FieldErrors(r.Validate())["due_date"])
}

func TestCreateOfferRequest_Validation(t *testing.T) {
	r := CreateOfferRequest{CandidateID: "c", JobID: "j", BaseSalary: 100000, PositionTitle: "SRE", CandidateEmail: "c@example.com"}
	assert.NoError(t, r.Validate())

	r.BaseSalary = 0
	assert.Contains(t, FieldErrors(r.Validate()), "baseSalary")
}

func TestFieldErrors_NonValidationError(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(errors.New("boom")))
}
