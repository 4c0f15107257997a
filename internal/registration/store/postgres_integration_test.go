//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"nftgate/internal/platform/database"
	"nftgate/internal/registration/models"
	"nftgate/internal/registration/store"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/testutil"
	"nftgate/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	BackendSuite
	postgres *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	s := &PostgresStoreSuite{}
	s.newStore = func() countingBackend {
		s.Require().NoError(s.postgres.TruncateAll(context.Background()))
		return store.NewPostgres(s.postgres.DB)
	}
	suite.Run(t, s)
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *PostgresStoreSuite) TestInsertUsesDatabaseRegistrationDate() {
	ctx := context.Background()
	rec := testutil.NewRecordBuilder().WithGender(models.GenderOther).Build()
	s.Require().NoError(s.store.Insert(ctx, rec))

	var (
		gender     string
		dob        time.Time
		registered time.Time
	)
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT gender, date_of_birth, registration_date FROM users WHERE wallet_address = $1`,
		rec.WalletAddress,
	).Scan(&gender, &dob, &registered)
	s.Require().NoError(err)
	s.Equal(string(models.GenderOther), gender)
	s.True(rec.RegistrationDate.Equal(registered))
	s.Equal(rec.DateOfBirth.Format(models.DateLayout), dob.Format(models.DateLayout))
}

func (s *PostgresStoreSuite) TestClosedDatabaseIsUnavailable() {
	db, err := sql.Open(database.DriverPostgres, s.postgres.DSN)
	s.Require().NoError(err)
	s.Require().NoError(db.Close())

	_, err = store.NewPostgres(db).Exists(context.Background(), testutil.TestWallets.Alice)
	s.ErrorIs(err, sentinel.ErrUnavailable)

	err = store.NewPostgres(db).Insert(context.Background(), testutil.NewRecordBuilder().Build())
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.NotErrorIs(err, sentinel.ErrAlreadyUsed)
}
