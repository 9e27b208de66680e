package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allsoft/pims/internal/platform/constants"
)

// RedisCache implements Cache over a shared Redis client.
//
// The full list is stored as one JSON blob under a single key; individual
// categories are small and change rarely, so per-item caching is not worth
// the extra round-trips.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (cache *RedisCache) GetList(context context.Context) ([]*Category, error) {
	payload, err := cache.client.Get(context, constants.RedisKeyCategoryList).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis_category_cache_get_failed: %w", err)
	}

	var categories []*Category
	if err := json.Unmarshal(payload, &categories); err != nil {
		// A corrupt entry behaves like a miss; the next SetList overwrites it.
		return nil, nil
	}
	return categories, nil
}

func (cache *RedisCache) SetList(context context.Context, categories []*Category, ttl time.Duration) error {
	payload, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("redis_category_cache_marshal_failed: %w", err)
	}

	if err := cache.client.Set(context, constants.RedisKeyCategoryList, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_category_cache_set_failed: %w", err)
	}
	return nil
}

func (cache *RedisCache) InvalidateList(context context.Context) error {
	if err := cache.client.Del(context, constants.RedisKeyCategoryList).Err(); err != nil {
		return fmt.Errorf("redis_category_cache_invalidate_failed: %w", err)
	}
	return nil
}
