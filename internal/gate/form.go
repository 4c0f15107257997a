package gate

import (
	"strings"
	"time"

	"nftgate/internal/registration/models"
)

// Form holds the registration inputs collected while in NeedsRegistration.
type Form struct {
	Name          string
	DOB           string
	Gender        string
	MaritalStatus string
}

// Registration is the payload sent to API.Register.
type Registration struct {
	WalletAddress string `json:"walletAddress"`
	Name          string `json:"name"`
	DOB           string `json:"dob"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"maritalStatus"`
}

// Normalize trims every field and lowercases the enumerations.
func (f Form) Normalize() Form {
	return Form{
		Name:          strings.TrimSpace(f.Name),
		DOB:           strings.TrimSpace(f.DOB),
		Gender:        strings.ToLower(strings.TrimSpace(f.Gender)),
		MaritalStatus: strings.ToLower(strings.TrimSpace(f.MaritalStatus)),
	}
}

// Validate checks a normalized form without any network call and returns
// one message per failing field, or nil.
func (f Form) Validate() map[string]string {
	fields := map[string]string{}
	if f.Name == "" {
		fields["name"] = "Name is required"
	}
	switch {
	case f.DOB == "":
		fields["dob"] = "Date of birth is required"
	default:
		if _, err := time.Parse(models.DateLayout, f.DOB); err != nil {
			fields["dob"] = "Date of birth must be a date (YYYY-MM-DD)"
		}
	}
	switch {
	case f.Gender == "":
		fields["gender"] = "Gender is required"
	case !models.Gender(f.Gender).IsKnown():
		fields["gender"] = "Gender must be one of " + joinValues(models.Genders)
	}
	switch {
	case f.MaritalStatus == "":
		fields["maritalStatus"] = "Marital status is required"
	case !models.MaritalStatus(f.MaritalStatus).IsKnown():
		fields["maritalStatus"] = "Marital status must be one of " + joinValues(models.MaritalStatuses)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (f Form) registration(walletAddress string) Registration {
	return Registration{
		WalletAddress: walletAddress,
		Name:          f.Name,
		DOB:           f.DOB,
		Gender:        f.Gender,
		MaritalStatus: f.MaritalStatus,
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
