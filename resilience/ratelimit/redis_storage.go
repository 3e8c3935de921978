package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "ratelimit:"
	scanBatchSize = 100
)

// RedisQuotaStore implements QuotaStore on a shared Redis instance, so quota
// headers stay consistent across multiple application instances.
type RedisQuotaStore struct {
	client redis.UniversalClient
}

var _ QuotaStore = (*RedisQuotaStore)(nil)

// NewRedisQuotaStore creates a Redis-backed quota store. Returns nil if the
// client is nil.
func NewRedisQuotaStore(client redis.UniversalClient) *RedisQuotaStore {
	if client == nil {
		return nil
	}

	return &RedisQuotaStore{client: client}
}

// Allow implements QuotaStore with a fixed window per scope, counted via
// INCR with a window-length expiry set on the first hit.
func (s *RedisQuotaStore) Allow(ctx context.Context, scope string, limit int, window time.Duration) (Decision, error) {
	key := keyPrefix + scope

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis expire: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis pttl: %w", err)
	}

	if ttl < 0 {
		ttl = window
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= int64(limit),
		Remaining: remaining,
		Reset:     time.Now().Add(ttl),
	}, nil
}

// Reset clears all quota keys using SCAN batches.
func (s *RedisQuotaStore) Reset(ctx context.Context) error {
	var cursor uint64

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, keyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}

		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis batch delete: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}
