package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		form   Form
		fields []string
	}{
		{
			name: "valid",
			form: Form{Name: "Bob", DOB: "1985-12-31", Gender: "MALE ", MaritalStatus: " Widowed"},
		},
		{
			name:   "all missing",
			form:   Form{},
			fields: []string{"name", "dob", "gender", "maritalStatus"},
		},
		{
			name:   "impossible date",
			form:   Form{Name: "Bob", DOB: "1985-02-30", Gender: "male", MaritalStatus: "single"},
			fields: []string{"dob"},
		},
		{
			name:   "timestamp is not a form date",
			form:   Form{Name: "Bob", DOB: "1985-02-01T00:00:00Z", Gender: "male", MaritalStatus: "single"},
			fields: []string{"dob"},
		},
		{
			name:   "unknown enumerations",
			form:   Form{Name: "Bob", DOB: "1985-02-01", Gender: "unknown", MaritalStatus: "complicated"},
			fields: []string{"gender", "maritalStatus"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Normalize().Validate()
			if len(tt.fields) == 0 {
				assert.Nil(t, got)
				return
			}
			assert.Len(t, got, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestFormNormalize(t *testing.T) {
	f := Form{Name: "  Ann ", DOB: " 2000-01-01 ", Gender: " Female", MaritalStatus: "MARRIED "}.Normalize()
	assert.Equal(t, Form{Name: "Ann", DOB: "2000-01-01", Gender: "female", MaritalStatus: "married"}, f)
}

func TestFormErrorMessageIsSorted(t *testing.T) {
	err := &FormError{Fields: map[string]string{"name": "Name is required", "dob": "Date of birth is required"}}
	assert.Equal(t, "invalid form: dob: Date of birth is required; name: Name is required", err.Error())
}

func TestPhaseHelpers(t *testing.T) {
	assert.Equal(t, "NeedsRegistration", NeedsRegistration.String())
	assert.True(t, Registered.CanClaim())
	assert.False(t, Submitting.CanClaim())
	assert.True(t, Submitting.ShowsForm())
	assert.False(t, CheckingStatus.ShowsForm())
}
