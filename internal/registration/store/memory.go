package store

import (
	"context"
	"fmt"
	"sync"

	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/requestcontext"
)

// InMemory keeps registrations in a map; used for local development and tests.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// NewInMemory creates an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]models.Record)}
}

func (s *InMemory) Exists(_ context.Context, walletAddress string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[walletAddress]
	return ok, nil
}

// Insert stores the record unless the wallet is already present. The
// check and the write happen under one lock, which plays the role of the
// unique index.
func (s *InMemory) Insert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.WalletAddress]; ok {
		return fmt.Errorf("wallet already registered: %w", sentinel.ErrAlreadyUsed)
	}
	record.RegistrationDate = requestcontext.Now(ctx).UTC()
	s.records[record.WalletAddress] = *record
	return nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
