package handler

import (
	"strings"
	"time"

	"nftgate/internal/registration/models"
	"nftgate/internal/registration/service"
	dErrors "nftgate/pkg/domain-errors"
	"nftgate/pkg/platform/validation"
)

// RegisterRequest is the POST /api/register body. Gender and marital
// status are free-form here; clients restrict them to the known values.
type RegisterRequest struct {
	WalletAddress string `json:"walletAddress" validate:"notblank,max=128"`
	Name          string `json:"name" validate:"notblank,max=200"`
	DOB           string `json:"dob" validate:"notblank"`
	Gender        string `json:"gender" validate:"notblank,max=32"`
	MaritalStatus string `json:"maritalStatus" validate:"notblank,max=32"`

	dob time.Time
}

func (r *RegisterRequest) Normalize() {
	if r == nil {
		return
	}
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
	r.Name = strings.TrimSpace(r.Name)
	r.DOB = strings.TrimSpace(r.DOB)
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	r.MaritalStatus = strings.ToLower(strings.TrimSpace(r.MaritalStatus))
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	dob, err := models.ParseDateOfBirth(r.DOB)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "dob must be a valid date (YYYY-MM-DD)")
	}
	r.dob = dob
	return nil
}

// ToCommand converts a validated request into the service command.
func (r *RegisterRequest) ToCommand() service.RegisterCommand {
	return service.RegisterCommand{
		WalletAddress: r.WalletAddress,
		Name:          r.Name,
		DateOfBirth:   r.dob,
		Gender:        models.Gender(r.Gender),
		MaritalStatus: models.MaritalStatus(r.MaritalStatus),
	}
}

// walletFromQuery trims and bounds the walletAddress query parameter.
func walletFromQuery(raw string) (string, error) {
	wallet := strings.TrimSpace(raw)
	if wallet == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "walletAddress is required")
	}
	if err := validation.CheckStringLength("walletAddress", wallet, validation.MaxWalletAddressLength); err != nil {
		return "", err
	}
	return wallet, nil
}
