package models

import (
	"strings"
	"time"

	dErrors "nftgate/pkg/domain-errors"
)

// Record is the off-chain registration for one wallet. It is created once
// and never updated or deleted.
type Record struct {
	WalletAddress    string        `json:"walletAddress"`
	Name             string        `json:"name"`
	DateOfBirth      time.Time     `json:"dateOfBirth"`
	Gender           Gender        `json:"gender"`
	MaritalStatus    MaritalStatus `json:"maritalStatus"`
	RegistrationDate time.Time     `json:"registrationDate"`
}

// IsMarried is the boolean projection older storefront schemas persisted.
func (r *Record) IsMarried() bool {
	return r.MaritalStatus == MaritalStatusMarried
}

// NewRecord builds a record, enforcing the non-empty invariants. Gender and
// marital status are accepted as free-form values here; restricting them
// to the known enumerations is the caller's job.
func NewRecord(walletAddress, name string, dob time.Time, gender Gender, marital MaritalStatus) (*Record, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	name = strings.TrimSpace(name)
	if walletAddress == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "wallet address cannot be empty")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	if dob.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "date of birth is required")
	}
	if gender == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "gender cannot be empty")
	}
	if marital == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "marital status cannot be empty")
	}
	return &Record{
		WalletAddress: walletAddress,
		Name:          name,
		DateOfBirth:   truncateToDate(dob),
		Gender:        gender,
		MaritalStatus: marital,
	}, nil
}

// RegistrationCreated is emitted after a record has been persisted.
type RegistrationCreated struct {
	EventID       string    `json:"event_id"`
	WalletAddress string    `json:"wallet_address"`
	RegisteredAt  time.Time `json:"registered_at"`
}
