package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/example/shopfront/pkg/config"
	"github.com/example/shopfront/pkg/models"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// ProductCache is a cache-aside layer over product reads. Redis failures are
// logged and fall through to the loader.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

func NewProductCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.Named("product-cache"),
	}
}

func productKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *ProductCache) Close() error {
	return c.client.Close()
}

// GetProduct returns the cached product or calls load on a miss and caches
// the result. Concurrent misses for the same id share one load.
func (c *ProductCache) GetProduct(ctx context.Context, id uint, load func(context.Context) (*models.Product, error)) (*models.Product, error) {
	key := productKey(id)

	var cached models.Product
	err := c.getJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := c.group.Do(strconv.FormatUint(uint64(id), 10), func() (interface{}, error) {
		product, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.setJSON(ctx, key, product, c.ttl); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Product), nil
}

// Invalidate drops the cached entries for the given products.
func (c *ProductCache) Invalidate(ctx context.Context, ids ...uint) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (c *ProductCache) setJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

func (c *ProductCache) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
