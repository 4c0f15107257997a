package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"

	"nftgate/internal/registration/store"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/requestcontext"
	"nftgate/pkg/testutil"
)

type countingBackend interface {
	store.Backend
	store.Counter
}

// BackendSuite holds the behaviour every registration backend must share.
// Concrete suites embed it and set newStore.
type BackendSuite struct {
	suite.Suite
	newStore func() countingBackend
	store    countingBackend
}

func (s *BackendSuite) SetupTest() {
	s.store = s.newStore()
}

func (s *BackendSuite) TestExistsUnknownWallet() {
	found, err := s.store.Exists(context.Background(), testutil.TestWallets.Bob)
	s.Require().NoError(err)
	s.False(found)
}

func (s *BackendSuite) TestInsertThenExists() {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	rec := testutil.NewRecordBuilder().Build()

	s.Require().NoError(s.store.Insert(ctx, rec))
	s.False(rec.RegistrationDate.IsZero(), "insert assigns the registration date")

	found, err := s.store.Exists(ctx, rec.WalletAddress)
	s.Require().NoError(err)
	s.True(found)
}

func (s *BackendSuite) TestDuplicateInsertIsAlreadyUsed() {
	ctx := context.Background()
	builder := testutil.NewRecordBuilder().WithWallet(testutil.TestWallets.Carol)

	s.Require().NoError(s.store.Insert(ctx, builder.Build()))
	err := s.store.Insert(ctx, builder.WithName("Someone Else").Build())
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *BackendSuite) TestWalletAddressIsCaseSensitive() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, testutil.NewRecordBuilder().WithWallet("0xABCDEF0000").Build()))

	found, err := s.store.Exists(ctx, "0xabcdef0000")
	s.Require().NoError(err)
	s.False(found)
}

func (s *BackendSuite) TestConcurrentDuplicateInsertsCreateOneRow() {
	ctx := context.Background()
	const goroutines = 20
	wallet := "0xC0ffee254729296a45a3885639AC7E10F9d54979"

	result := testutil.RunConcurrent(goroutines, func(idx int) error {
		rec := testutil.NewRecordBuilder().
			WithWallet(wallet).
			WithName(fmt.Sprintf("Racer %d", idx)).
			Build()
		return s.store.Insert(ctx, rec)
	})

	s.Equal(int32(1), result.Successes)
	s.Equal(int32(goroutines-1), result.Conflicts)
	s.Equal(int32(0), result.Errors)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
