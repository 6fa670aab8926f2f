package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantID    string
		populated bool
		wantName  string
	}{
		{name: "bare id", input: `"c1"`, wantID: "c1"},
		{name: "populated with _id", input: `{"_id":"c2","name":"Ada"}`, wantID: "c2", populated: true, wantName: "Ada"},
		{name: "populated with id", input: `{"id":"c3","name":"Grace"}`, wantID: "c3", populated: true, wantName: "Grace"},
		{name: "null", input: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Ref[Candidate]
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.wantID, r.ID)
			assert.Equal(t, tt.populated, r.Populated())
			if tt.populated {
				assert.Equal(t, tt.wantName, r.Value.Name)
			}
		})
	}
}

func TestRef_UnmarshalRejectsOtherShapes(t *testing.T) {
	var r Ref[Candidate]
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &r))
}

func TestRef_Marshal(t *testing.T) {
	b, err := json.Marshal(RefTo[JobSummary]("j1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"j1"`, string(b))

	b, err = json.Marshal(Ref[JobSummary]{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	b, err = json.Marshal(Ref[JobSummary]{ID: "j2", Value: &JobSummary{IDs: IDs{ID: "j2"}, Title: "SRE"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"j2","title":"SRE"}`, string(b))
}

func TestInterview_UnifiedContract(t *testing.T) {
	flat := `{"id":"i1","candidate_id":"c1","job_id":"j1","interviewer_ids":[],"mode":"online","status":"scheduled"}`
	nested := `{"_id":"i2","candidate_id":{"_id":"c2","name":"Ada","email":"ada@example.com"},"job_id":{"_id":"j2","title":"Backend Engineer"},"interviewer_ids":["u1"],"mode":"onsite","status":"completed","feedback":{"comments":"solid","rating":4,"recommendation":"yes"}}`

	var a, b Interview
	require.NoError(t, json.Unmarshal([]byte(flat), &a))
	require.NoError(t, json.Unmarshal([]byte(nested), &b))

	assert.Equal(t, "i1", a.Key())
	assert.Equal(t, "c1", a.CandidateName())
	assert.Equal(t, "j1", a.JobTitle())

	assert.Equal(t, "i2", b.Key())
	assert.Equal(t, "c2", b.Candidate.ID)
	assert.Equal(t, "Ada", b.CandidateName())
	assert.Equal(t, "Backend Engineer", b.JobTitle())
	require.NotNil(t, b.Feedback)
	assert.Equal(t, 4, b.Feedback.Rating)
}
