// Package store persists registration records. Every backend answers the
// same two questions (does this wallet have a record, insert one) and
// reports a duplicate wallet through its own native uniqueness signal,
// translated to sentinel.ErrAlreadyUsed. Driver and network failures are
// wrapped with sentinel.ErrUnavailable.
package store

import (
	"context"

	"nftgate/internal/registration/models"
)

// Backend is the capability set shared by all registration stores.
type Backend interface {
	Exists(ctx context.Context, walletAddress string) (bool, error)
	Insert(ctx context.Context, record *models.Record) error
}

// Counter is implemented by backends that can report their row count.
type Counter interface {
	Count(ctx context.Context) (int, error)
}
