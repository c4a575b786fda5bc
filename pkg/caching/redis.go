package caching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "schoolbot:answer:"

// RedisOptions configures a RedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache keeps answers in Redis so several assistant processes share them.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache connects and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{rdb: rdb, ttl: opts.TTL, logger: logger.With("component", "answer-cache")}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("Cache get failed", "error", err)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.rdb.Set(ctx, redisKeyPrefix+Key(key), data, c.ttl).Err()
}

// Purge scans for the assistant's keys and deletes them.
func (c *RedisCache) Purge(ctx context.Context) error {
	var deleted int64
	iter := c.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("deleting key %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scanning answer keys: %w", err)
	}
	c.logger.Info("Cache purged", "keys_deleted", deleted)
	return nil
}

// Close closes the underlying connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
