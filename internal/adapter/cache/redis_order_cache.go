package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

// RedisOrderCache keeps the latest fulfillment status per order so storefront
// polling does not hit MySQL. Best-effort: misses fall through to the repo.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)

func (c *RedisOrderCache) SetStatus(ctx context.Context, orderID, status string) error {
	return c.rdb.Set(ctx, "order:status:"+orderID, status, c.ttl).Err()
}

func (c *RedisOrderCache) GetStatus(ctx context.Context, orderID string) (string, error) {
	val, err := c.rdb.Get(ctx, "order:status:"+orderID).Result()
	if errors.Is(err, redis.Nil) {
		return "", usecase.ErrNotFound
	}
	return val, err
}
