package services

import (
	"context"
	"time"

	"github.com/alumnet/apiserver/internal/cache"
	"go.uber.org/zap"
)

const (
	statsCacheKey  = "users:stats"
	groupsCacheKey = "campaigns:groups"
)

// readThrough returns the cached value at key, or loads and caches it.
// Cache failures are logged and never fail the request.
func readThrough[T any](ctx context.Context, c cache.Cache, ttl time.Duration, logger *zap.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	var value T
	hit, err := c.Get(ctx, key, &value)
	if err != nil {
		logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return value, nil
	}

	value, err = load(ctx)
	if err != nil {
		return value, err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

// invalidateUserAggregates drops every cached value derived from the user
// table.
func invalidateUserAggregates(ctx context.Context, c cache.Cache, logger *zap.Logger) {
	if err := c.Delete(ctx, statsCacheKey, groupsCacheKey); err != nil {
		logger.Warn("cache invalidate failed", zap.Error(err))
	}
}
