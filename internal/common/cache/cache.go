package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	rplatform "raffle-sales-backend/internal/platform/redis"
)

var (
	// ErrMiss is returned by Get when the key is absent.
	ErrMiss = errors.New("cache miss")
	// ErrStale is returned by SetIfVersion when the version moved after it
	// was read, i.e. the value may predate a write.
	ErrStale = errors.New("cache version changed")
)

// CacheService is a JSON cache over Redis. Writers guard entries with a
// version counter: readers take the version before loading from the
// database and only store the result if no invalidation happened since.
type CacheService struct {
	redisClient *rplatform.Client
}

func NewCacheService(redisClient *rplatform.Client) *CacheService {
	return &CacheService{
		redisClient: redisClient,
	}
}

// Get получает значение из кэша
func (c *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}

	return json.Unmarshal(data, dest)
}

// Version returns the counter stored at versionKey, zero when absent.
func (c *CacheService) Version(ctx context.Context, versionKey string) (int64, error) {
	v, err := c.redisClient.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// SetIfVersion сохраняет значение, только если версия не изменилась
func (c *CacheService) SetIfVersion(ctx context.Context, versionKey string, version int64, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	err = c.redisClient.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return ErrStale
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrStale
	}
	return err
}

// Bump increments versionKey and drops keys in one transaction, so no
// reader that started before the bump can store its value afterwards.
func (c *CacheService) Bump(ctx context.Context, versionKey string, keys ...string) error {
	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		if len(keys) > 0 {
			pipe.Del(ctx, keys...)
		}
		return nil
	})
	return err
}
