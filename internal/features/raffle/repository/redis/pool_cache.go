package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raffle-sales-backend/internal/common/cache"
	"raffle-sales-backend/internal/features/raffle/models"
)

// PoolCache keeps raw raffle_numbers rows for a short TTL. It stores rows as
// read from the database; effective status is computed by the caller after
// every read, so a cached hold still lapses on time.
//
// Each raffle has a generation counter. Invalidate bumps it, and Set only
// stores rows loaded under the current generation, so a slow reader cannot
// put back rows that predate a sale.
type PoolCache struct {
	cache *cache.CacheService
	ttl   time.Duration
}

func NewPoolCache(c *cache.CacheService, ttl time.Duration) *PoolCache {
	return &PoolCache{cache: c, ttl: ttl}
}

func poolKey(raffleID string) string       { return fmt.Sprintf("raffle:pool:%s", raffleID) }
func generationKey(raffleID string) string { return fmt.Sprintf("raffle:pool:%s:gen", raffleID) }

// Get returns the cached rows and whether they were present.
func (p *PoolCache) Get(ctx context.Context, raffleID string) ([]models.RaffleNumber, bool, error) {
	var rows []models.RaffleNumber
	if err := p.cache.Get(ctx, poolKey(raffleID), &rows); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rows, true, nil
}

func (p *PoolCache) Generation(ctx context.Context, raffleID string) (int64, error) {
	return p.cache.Version(ctx, generationKey(raffleID))
}

// Set stores rows loaded under generation. A moved generation is not an
// error; the rows are simply dropped.
func (p *PoolCache) Set(ctx context.Context, raffleID string, generation int64, rows []models.RaffleNumber) error {
	if p.ttl <= 0 {
		return nil
	}
	err := p.cache.SetIfVersion(ctx, generationKey(raffleID), generation, poolKey(raffleID), rows, p.ttl)
	if errors.Is(err, cache.ErrStale) {
		return nil
	}
	return err
}

func (p *PoolCache) Invalidate(ctx context.Context, raffleID string) error {
	return p.cache.Bump(ctx, generationKey(raffleID), poolKey(raffleID))
}
