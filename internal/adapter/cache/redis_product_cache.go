package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

const notFoundMarker = "notfound"

// CachedProductRepo is a read-through wrapper over the MySQL product repo.
// Single-product reads are cached (misses negatively for a short window);
// batch and list reads always go to the database because the order path needs
// live stock numbers.
type CachedProductRepo struct {
	repo usecase.ProductRepo
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedProductRepo(repo usecase.ProductRepo, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedProductRepo {
	return &CachedProductRepo{repo: repo, rdb: rdb, ttl: ttl, log: log}
}

var _ usecase.ProductRepo = (*CachedProductRepo)(nil)

func (c *CachedProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	key := "product:" + id

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, usecase.ErrNotFound
		}
		var p domain.Product
		if uerr := json.Unmarshal(data, &p); uerr == nil {
			return &p, nil
		}
		c.log.Warn("bad product cache entry, falling back to db", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("redis read failed, falling back to db", "error", err)
	}

	p, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			_ = c.rdb.Set(ctx, key, notFoundMarker, time.Minute).Err()
		}
		return nil, err
	}

	if payload, merr := json.Marshal(p); merr == nil {
		if serr := c.rdb.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			c.log.Warn("failed to cache product", "key", key, "error", serr)
		}
	}
	return p, nil
}

func (c *CachedProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	return c.repo.GetByIDs(ctx, ids)
}

func (c *CachedProductRepo) ListActive(ctx context.Context, page, limit int) ([]domain.Product, int64, error) {
	return c.repo.ListActive(ctx, page, limit)
}
