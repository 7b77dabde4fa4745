package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/goldlab/assay-api/internal/config"
)

const keyPrefix = "assay:"

// Cache is a JSON cache over redis. A Cache without a client is valid and
// never hits, so callers need no nil checks when redis is not configured.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis. An empty address returns a disabled cache; an
// unreachable server is logged and also yields a disabled cache.
func New(ctx context.Context, conf *config.RedisConfig) *Cache {
	if conf == nil || conf.Addr == "" {
		zap.L().Info("redis address not set, caching disabled")
		return &Cache{}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Warn("redis unreachable, caching disabled", zap.String("addr", conf.Addr), zap.Error(err))
		_ = rdb.Close()
		return &Cache{}
	}

	zap.L().Info("redis connected", zap.String("addr", conf.Addr))

	return NewWithClient(rdb, conf.TTL)
}

func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Get decodes the value at key into dst and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}

	raw, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, fmt.Errorf("c.rdb.Get -> %w", err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("json.Unmarshal -> %w", err)
	}

	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err := c.rdb.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.rdb.Set -> %w", err)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}

	if err := c.rdb.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("c.rdb.Del -> %w", err)
	}

	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}

	return c.rdb.Close()
}
