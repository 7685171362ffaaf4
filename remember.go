package petango

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bigwing/petango/internal/singleflight"
)

// Remember returns the value cached under key. On a miss it calls produce and
// caches the result for ttl, unless produce returned an error: failures are
// never stored, so the next call tries again. Cache backend failures are
// treated as misses.
func Remember[T any](ctx context.Context, cache Cache, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	return remember(ctx, &cacheAside{cache: cache, logger: NopLogger{}}, "", key, ttl, produce)
}

// cacheAside holds what remember needs from the client. With a group, misses
// for the same key share one produce call and its encoded result.
type cacheAside struct {
	cache   Cache
	logger  Logger
	metrics *MetricsCollector
	group   *singleflight.Group[[]byte]
}

func remember[T any](ctx context.Context, ca *cacheAside, operation, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	if v, ok := lookup[T](ctx, ca, key); ok {
		ca.metrics.RecordCacheHit(operation)
		return v, nil
	}
	ca.metrics.RecordCacheMiss(operation)

	if ca.group == nil {
		return produceAndStore(ctx, ca, key, ttl, produce)
	}
	return produceShared(ctx, ca, key, ttl, produce)
}

// produceShared joins or starts the flight for key. The flight outlives the
// caller that started it; each caller waits only as long as its own ctx and
// decodes a private copy of the result.
func produceShared[T any](ctx context.Context, ca *cacheAside, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	var zero T

	flightCtx := context.WithoutCancel(ctx)
	ch := ca.group.DoChan(key, func() ([]byte, error) {
		v, err := produce(flightCtx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(v)
		if err != nil {
			ca.logger.Warn("Cannot encode value for cache", "cacheKey", key, "error", err)
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		store(flightCtx, ca, key, data, ttl)
		return data, nil
	})

	select {
	case <-ctx.Done():
		ca.logger.Debug("Stopped waiting for in-flight lookup", "cacheKey", key, "error", ctx.Err())
		return zero, &Error{Kind: ErrorKindTransport, Message: "lookup abandoned", Cause: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			ca.logger.Debug("Joined in-flight lookup", "cacheKey", key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		var v T
		if err := json.Unmarshal(res.Val, &v); err != nil {
			return zero, fmt.Errorf("decode %s: %w", key, err)
		}
		return v, nil
	}
}

func lookup[T any](ctx context.Context, ca *cacheAside, key string) (T, bool) {
	var v T
	if ca.cache == nil {
		return v, false
	}

	data, ok, err := ca.cache.Get(ctx, key)
	if err != nil {
		ca.logger.Warn("Cache read failed", "cacheKey", key, "error", err)
		return v, false
	}
	if !ok {
		ca.logger.Debug("Cache miss", "cacheKey", key)
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		ca.logger.Warn("Discarding undecodable cache entry", "cacheKey", key, "error", err)
		return v, false
	}

	ca.logger.Debug("Cache hit", "cacheKey", key)
	return v, true
}

func produceAndStore[T any](ctx context.Context, ca *cacheAside, key string, ttl time.Duration, produce func(context.Context) (T, error)) (T, error) {
	v, err := produce(ctx)
	if err != nil || ca.cache == nil {
		return v, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		ca.logger.Warn("Cannot encode value for cache", "cacheKey", key, "error", err)
		return v, nil
	}
	store(ctx, ca, key, data, ttl)
	return v, nil
}

func store(ctx context.Context, ca *cacheAside, key string, data []byte, ttl time.Duration) {
	if ca.cache == nil {
		return
	}
	if err := ca.cache.Set(ctx, key, data, ttl); err != nil {
		ca.logger.Warn("Cache write failed", "cacheKey", key, "error", err)
		return
	}
	ca.logger.Debug("Value cached", "cacheKey", key, "ttl", ttl)
}
