package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CacheRepo is the TTL key-value primitive backing the action ledger sets
// and the candidate ID lists.
type CacheRepo struct {
	client *goredis.Client
}

func NewCacheRepo(client *goredis.Client) *CacheRepo {
	return &CacheRepo{client: client}
}

// Get returns the cached value and whether the key was present. A missing
// key is not an error.
func (r *CacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return "", false, fmt.Errorf("cache key is required")
	}

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cache key: %w", err)
	}

	return value, true, nil
}

func (r *CacheRepo) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" || ttl <= 0 {
		return fmt.Errorf("invalid cache set payload")
	}

	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set cache key: %w", err)
	}

	return nil
}

func (r *CacheRepo) Delete(ctx context.Context, keys ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(keys) == 0 {
		return nil
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}

	return nil
}
