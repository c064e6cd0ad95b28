package grpc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	defaultFetchTimeout = 15 * time.Second
	defaultSetTimeout   = 5 * time.Second
	maxTTLJitter        = 15 * time.Second
)

// addTTLJitter spreads expirations by up to ±15s so cached history entries
// written together do not expire together.
func addTTLJitter(ttl time.Duration) time.Duration {
	if ttl <= 2*maxTTLJitter {
		return ttl
	}
	jitter := time.Duration(rand.Int63n(int64(2*maxTTLJitter))) - maxTTLJitter
	return ttl + jitter
}

// refreshInBackground re-fetches a key after a cache hit so the next reader
// sees fresher data. Concurrent refreshes of one key collapse into one.
func refreshInBackground[T any](
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) {
	go func() {
		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), defaultFetchTimeout)
			defer cancel()

			value, err := fn(ctx)
			if err != nil {
				logger.Warn("background refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			storeValue(c, key, value, ttl, logger)
			return value, nil
		})
	}()
}

func storeValue[T any](c Cacher, key string, value T, ttl time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
	defer cancel()

	ttl = addTTLJitter(ttl)
	if err := c.Set(ctx, key, value, ttl); err != nil {
		logger.Warn("failed to store cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	logger.Debug("cache entry stored", zap.String("key", key), zap.Duration("ttl", ttl))
}

// FindAndCache implements read-through caching with singleflight and refresh-ahead logic.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	var cached T
	err := c.Get(ctx, key, &cached)
	switch {
	case err == nil:
		logger.Debug("cache hit", zap.String("key", key))
		refreshInBackground(c, sf, key, ttl, logger, fn)
		return cached, nil

	case errors.Is(err, redis.Nil):
		logger.Debug("cache miss", zap.String("key", key))

	default:
		logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		go storeValue(c, key, value, ttl, logger)
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}

	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}

	return value, nil
}

// invalidate drops cached entries after new results change what they summarise.
func invalidate(ctx context.Context, c Cacher, logger *zap.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
