package testutil

import (
	"time"

	"nftgate/internal/registration/models"
)

// TestWallets provides fixed wallet addresses for deterministic test data.
var TestWallets = struct {
	Alice string
	Bob   string
	Carol string
}{
	Alice: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	Bob:   "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	Carol: "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
}

// RecordBuilder provides a fluent interface for building registration records.
type RecordBuilder struct {
	record *models.Record
}

// NewRecordBuilder creates a new RecordBuilder with sensible defaults.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		record: &models.Record{
			WalletAddress: TestWallets.Alice,
			Name:          "Alice Example",
			DateOfBirth:   time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC),
			Gender:        models.GenderFemale,
			MaritalStatus: models.MaritalStatusSingle,
		},
	}
}

func (b *RecordBuilder) WithWallet(walletAddress string) *RecordBuilder {
	b.record.WalletAddress = walletAddress
	return b
}

func (b *RecordBuilder) WithName(name string) *RecordBuilder {
	b.record.Name = name
	return b
}

func (b *RecordBuilder) WithDateOfBirth(dob time.Time) *RecordBuilder {
	b.record.DateOfBirth = dob
	return b
}

func (b *RecordBuilder) WithGender(gender models.Gender) *RecordBuilder {
	b.record.Gender = gender
	return b
}

func (b *RecordBuilder) WithMaritalStatus(status models.MaritalStatus) *RecordBuilder {
	b.record.MaritalStatus = status
	return b
}

// Build returns a fresh copy so one builder can seed several inserts.
func (b *RecordBuilder) Build() *models.Record {
	rec := *b.record
	return &rec
}
