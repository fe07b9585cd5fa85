package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/contactbook/backend/pkg/logger"
	"github.com/contactbook/backend/pkg/redis"
	"go.uber.org/zap"
)

// CacheService stores rendered JSON responses keyed by user and endpoint.
// All methods degrade silently when the cache backend is disabled or failing:
// a broken cache never breaks a request.
type CacheService struct {
	client redis.Client
	ttl    time.Duration
}

func NewCacheService(client redis.Client, ttl time.Duration) *CacheService {
	return &CacheService{client: client, ttl: ttl}
}

// Key builds a deterministic cache key. Query parameters are sorted so that
// ?a=1&b=2 and ?b=2&a=1 hit the same slot. Keys are prefixed with the user id
// so invalidation on writes is a single pattern delete.
func (c *CacheService) Key(endpoint string, userID uint, params url.Values) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(params[name], ","))
		b.WriteByte('&')
	}

	sum := md5.Sum([]byte(b.String()))
	return fmt.Sprintf("contacts:%d:%s:%x", userID, endpoint, sum)
}

func (c *CacheService) Get(ctx context.Context, key string) []byte {
	if c == nil || c.client == nil || !c.client.IsEnabled() {
		return nil
	}
	data, err := c.client.Get(ctx, key)
	if err != nil {
		logger.GetLogger().Warn("Cache read failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return nil
	}
	return data
}

func (c *CacheService) Set(ctx context.Context, key string, data []byte) {
	if c == nil || c.client == nil || !c.client.IsEnabled() {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		logger.GetLogger().Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// InvalidateUser drops every cached response for the user. Called after any
// contact write so reads never serve stale lists.
func (c *CacheService) InvalidateUser(ctx context.Context, userID uint) {
	if c == nil || c.client == nil || !c.client.IsEnabled() {
		return
	}
	pattern := fmt.Sprintf("contacts:%d:*", userID)
	if err := c.client.DeleteByPattern(ctx, pattern); err != nil {
		logger.GetLogger().Warn("Cache invalidation failed",
			zap.String("pattern", pattern),
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}
}
