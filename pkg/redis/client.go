package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client is the cache collaborator contract. Implementations must be safe
// for concurrent use; a disabled client reports misses and succeeds silently.
type Client interface {
	// Get returns (nil, nil) on a cache miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX sets the key only if absent; returns whether the key was set.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	DeleteByPattern(ctx context.Context, pattern string) error
	Ping(ctx context.Context) error
	IsEnabled() bool
	Close() error
}

// Config holds redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
}

type redisClient struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

type disabledClient struct{}

// NewClient creates a redis-backed Client, or a no-op client when disabled.
func NewClient(cfg Config, logger *zap.Logger, addr string) Client {
	if !cfg.Enabled {
		return &disabledClient{}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable at startup, continuing degraded",
			zap.String("addr", addr),
			zap.Error(err),
		)
	}

	return &redisClient{rdb: rdb, logger: logger}
}

func (c *redisClient) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (c *redisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *redisClient) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (c *redisClient) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisClient) IsEnabled() bool {
	return true
}

func (c *redisClient) Close() error {
	return c.rdb.Close()
}

func (c *disabledClient) Get(ctx context.Context, key string) ([]byte, error) { return nil, nil }
func (c *disabledClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c *disabledClient) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return true, nil
}
func (c *disabledClient) DeleteByPattern(ctx context.Context, pattern string) error { return nil }
func (c *disabledClient) Ping(ctx context.Context) error                            { return errors.New("redis disabled") }
func (c *disabledClient) IsEnabled() bool                                           { return false }
func (c *disabledClient) Close() error                                              { return nil }
