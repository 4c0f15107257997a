package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// PostgresStore persists registrations in the users table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registration store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Exists(ctx context.Context, walletAddress string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE wallet_address = $1)`,
		walletAddress,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	return exists, nil
}

// Insert relies on the UNIQUE constraint on wallet_address; there is no
// pre-check, so concurrent inserts for one wallet resolve in the database.
func (s *PostgresStore) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	query := `
		INSERT INTO users (wallet_address, name, date_of_birth, gender, marital_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING registration_date
	`
	err := s.db.QueryRowContext(ctx, query,
		record.WalletAddress,
		record.Name,
		record.DateOfBirth,
		string(record.Gender),
		string(record.MaritalStatus),
	).Scan(&record.RegistrationDate)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("wallet already registered: %w", sentinel.ErrAlreadyUsed)
		}
		return fmt.Errorf("insert registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count registrations: %w: %w", sentinel.ErrUnavailable, err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
