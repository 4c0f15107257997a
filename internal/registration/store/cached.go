package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"nftgate/internal/registration/metrics"
	"nftgate/internal/registration/models"
	"nftgate/pkg/platform/circuit"
	"nftgate/pkg/platform/sentinel"
)

const (
	statusKeyPrefix = "nftgate:registered:"
	DefaultCacheTTL = 10 * time.Minute
)

// cacheClient is the subset of go-redis used by CachedStore.
type cacheClient interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedStore answers Exists from Redis when it can. Only positive answers
// are cached: a registration is never removed, so a cached true cannot go
// stale, while a cached false would hide a fresh registration.
type CachedStore struct {
	backing Backend
	cache   cacheClient
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type CacheOption func(*CachedStore)

func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithCacheMetrics(m *metrics.Metrics) CacheOption {
	return func(c *CachedStore) {
		c.metrics = m
	}
}

func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *CachedStore) {
		c.logger = logger
	}
}

func WithCacheBreaker(b *circuit.Breaker) CacheOption {
	return func(c *CachedStore) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewCached decorates backing with a Redis positive-status cache.
func NewCached(backing Backend, cache cacheClient, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		backing: backing,
		cache:   cache,
		ttl:     DefaultCacheTTL,
		breaker: circuit.New("status-cache"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exists consults the cache, then the backing store. While the breaker is
// open the cache is still probed so it can recover, but its answer is ignored.
func (c *CachedStore) Exists(ctx context.Context, walletAddress string) (bool, error) {
	hits, err := c.cache.Exists(ctx, statusKey(walletAddress)).Result()
	if err != nil {
		c.metrics.IncCacheLookup(metrics.CacheError)
		c.recordFailure(ctx, err)
	} else if c.recordSuccess(ctx) && hits > 0 {
		c.metrics.IncCacheLookup(metrics.CacheHit)
		return true, nil
	} else {
		c.metrics.IncCacheLookup(metrics.CacheMiss)
	}

	found, err := c.backing.Exists(ctx, walletAddress)
	if err != nil {
		return false, err
	}
	if found {
		c.markRegistered(ctx, walletAddress)
	}
	return found, nil
}

// Insert delegates to the backing store. Both a fresh insert and a
// duplicate prove the wallet is registered, so either one primes the cache.
func (c *CachedStore) Insert(ctx context.Context, record *models.Record) error {
	err := c.backing.Insert(ctx, record)
	if err == nil || errors.Is(err, sentinel.ErrAlreadyUsed) {
		c.markRegistered(ctx, record.WalletAddress)
	}
	return err
}

func (c *CachedStore) Count(ctx context.Context) (int, error) {
	counter, ok := c.backing.(Counter)
	if !ok {
		return 0, fmt.Errorf("backing store cannot count registrations")
	}
	return counter.Count(ctx)
}

func (c *CachedStore) markRegistered(ctx context.Context, walletAddress string) {
	if err := c.cache.Set(ctx, statusKey(walletAddress), "1", c.ttl).Err(); err != nil {
		c.recordFailure(ctx, err)
		return
	}
	c.recordSuccess(ctx)
}

func (c *CachedStore) recordFailure(ctx context.Context, err error) {
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.metrics.IncCacheCircuit(circuit.StateOpen.String())
		c.logger.WarnContext(ctx, "status cache circuit opened", "breaker", c.breaker.Name(), "error", err)
		return
	}
	c.logger.DebugContext(ctx, "status cache call failed", "error", err)
}

func (c *CachedStore) recordSuccess(ctx context.Context) bool {
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.metrics.IncCacheCircuit(circuit.StateClosed.String())
		c.logger.InfoContext(ctx, "status cache circuit closed", "breaker", c.breaker.Name())
	}
	return usePrimary
}

func statusKey(walletAddress string) string {
	return statusKeyPrefix + walletAddress
}
