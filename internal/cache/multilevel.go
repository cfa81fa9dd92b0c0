package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// MultiLevelCache keeps a short lived in-process copy (L1) in front of an
// optional shared Redis (L2). L2 failures degrade to misses; they never fail
// the caller.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	l1TTL   time.Duration
	breaker *Breaker
	metrics *CacheMetrics
	log     *slog.Logger

	breakerCfg BreakerConfig
}

type MultiLevelOption func(*MultiLevelCache)

// WithL1TTL caps how long an entry may live in process memory.
func WithL1TTL(ttl time.Duration) MultiLevelOption {
	return func(c *MultiLevelCache) { c.l1TTL = ttl }
}

// WithBreakerConfig tunes the breaker guarding L2. State changes are
// always logged.
func WithBreakerConfig(cfg BreakerConfig) MultiLevelOption {
	return func(c *MultiLevelCache) { c.breakerCfg = cfg }
}

func WithLogger(log *slog.Logger) MultiLevelOption {
	return func(c *MultiLevelCache) { c.log = log }
}

// NewMultiLevelCache builds the cache. redisCache may be nil, in which case
// only the in-process level is used.
func NewMultiLevelCache(redisCache *RedisCache, opts ...MultiLevelOption) *MultiLevelCache {
	c := &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		l1TTL:   time.Minute,
		metrics: NewCacheMetrics(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := c.breakerCfg
	next := cfg.OnStateChange
	cfg.OnStateChange = func(from, to BreakerState) {
		c.log.Warn("redis circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
		if next != nil {
			next(from, to)
		}
	}
	c.breaker = NewBreaker(cfg)
	return c
}

func (c *MultiLevelCache) l1Expiry(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > c.l1TTL {
		return c.l1TTL
	}
	return ttl
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.l1Expiry(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	if c.l2 != nil {
		err := c.breaker.Do(func() error {
			return c.l2.Set(ctx, key, value, ttl)
		})
		if err != nil {
			c.metrics.RecordError()
			c.log.WarnContext(ctx, "l2 cache set failed", "key", key, "error", err)
		}
	}
	return nil
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordHit()
		return nil
	}

	if c.l2 == nil {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	missed := false
	err := c.breaker.Do(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			missed = true
			return nil
		}
		return err
	})
	if err != nil {
		c.metrics.RecordError()
		c.metrics.RecordMiss()
		if !errors.Is(err, ErrBreakerOpen) {
			c.log.WarnContext(ctx, "l2 cache get failed", "key", key, "error", err)
		}
		return ErrCacheMiss
	}
	if missed {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordHit()
	_ = c.l1.Set(ctx, key, dest, c.l1TTL)
	return nil
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	_ = c.l1.Delete(ctx, keys...)
	c.metrics.RecordDelete()

	if c.l2 != nil {
		err := c.breaker.Do(func() error {
			return c.l2.Delete(ctx, keys...)
		})
		if err != nil {
			c.metrics.RecordError()
			c.log.WarnContext(ctx, "l2 cache delete failed", "keys", keys, "error", err)
		}
	}
	return nil
}

func (c *MultiLevelCache) DeletePattern(ctx context.Context, pattern string) error {
	if err := c.l1.DeletePattern(ctx, pattern); err != nil {
		return err
	}
	c.metrics.RecordDelete()

	if c.l2 != nil {
		err := c.breaker.Do(func() error {
			return c.l2.DeletePattern(ctx, pattern)
		})
		if err != nil {
			c.metrics.RecordError()
			c.log.WarnContext(ctx, "l2 cache pattern delete failed", "pattern", pattern, "error", err)
		}
	}
	return nil
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"l1":      c.l1.Stats(),
		"metrics": c.metrics.Snapshot(),
	}

	if c.l2 != nil {
		stats["l2"] = c.l2.Stats()
		stats["circuit_breaker"] = c.breaker.Stats()
	}

	return stats
}

// Health reports the state of the shared level; an L1-only cache is always
// healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	if err := c.l2.Health(ctx); err != nil {
		return errors.Join(ErrCacheDown, err)
	}
	return nil
}

func (c *MultiLevelCache) Close() error {
	_ = c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}
