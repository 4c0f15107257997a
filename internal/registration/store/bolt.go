package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/requestcontext"
)

var bucketRegistrations = []byte("registrations")

var errDuplicate = errors.New("duplicate wallet")

// BoltStore keeps registrations in a single bbolt file, keyed by wallet
// address. bbolt serializes write transactions, so the existence check and
// the put inside one Update are atomic.
type BoltStore struct {
	db *bolt.DB
}

// NewBolt wraps an open bbolt database and ensures the bucket exists.
func NewBolt(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketRegistrations)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create registrations bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Exists(_ context.Context, walletAddress string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketRegistrations).Get([]byte(walletAddress)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("check registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	return found, nil
}

func (s *BoltStore) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	stored := *record
	stored.RegistrationDate = requestcontext.Now(ctx).UTC()
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegistrations)
		key := []byte(stored.WalletAddress)
		if b.Get(key) != nil {
			return errDuplicate
		}
		return b.Put(key, payload)
	})
	if errors.Is(err, errDuplicate) {
		return fmt.Errorf("wallet already registered: %w", sentinel.ErrAlreadyUsed)
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w: %w", sentinel.ErrUnavailable, err)
	}
	record.RegistrationDate = stored.RegistrationDate
	return nil
}

func (s *BoltStore) Count(_ context.Context) (int, error) {
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(bucketRegistrations).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w: %w", sentinel.ErrUnavailable, err)
	}
	return count, nil
}
