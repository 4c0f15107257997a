package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"

	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/sentinel"
)

// SQL Server error numbers for unique index and primary key violations.
const (
	mssqlUniqueConstraint = 2627
	mssqlUniqueIndex      = 2601
)

// SQLServerStore persists registrations in a SQL Server users table.
type SQLServerStore struct {
	db *sql.DB
}

// NewSQLServer constructs a SQL Server-backed registration store.
func NewSQLServer(db *sql.DB) *SQLServerStore {
	return &SQLServerStore{db: db}
}

func (s *SQLServerStore) Exists(ctx context.Context, walletAddress string) (bool, error) {
	var found int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE wallet_address = @p1`,
		walletAddress,
	).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("check registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	return found > 0, nil
}

func (s *SQLServerStore) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	query := `
		INSERT INTO users (wallet_address, name, date_of_birth, gender, marital_status)
		OUTPUT INSERTED.registration_date
		VALUES (@p1, @p2, @p3, @p4, @p5)
	`
	err := s.db.QueryRowContext(ctx, query,
		record.WalletAddress,
		record.Name,
		record.DateOfBirth,
		string(record.Gender),
		string(record.MaritalStatus),
	).Scan(&record.RegistrationDate)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("wallet already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	record.RegistrationDate = record.RegistrationDate.UTC()
	return nil
}

func (s *SQLServerStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w: %w", sentinel.ErrUnavailable, err)
	}
	return count, nil
}

func isDuplicateKey(err error) bool {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == mssqlUniqueConstraint || msErr.Number == mssqlUniqueIndex
	}
	return false
}
