package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// scanBatch is the COUNT hint for SCAN and the UNLINK batch size.
const scanBatch = 100

// RedisOptions configures the shared L2 cache.
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	// MaxRetries of -1 disables retries.
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// OpTimeout bounds every single cache call.
	OpTimeout time.Duration
	// KeyPrefix namespaces keys so both applications can share one Redis.
	KeyPrefix string
}

func DefaultRedisOptions() RedisOptions {
	return RedisOptions{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		OpTimeout:    time.Second,
	}
}

// RedisCache stores JSON encoded values under KeyPrefix+key.
type RedisCache struct {
	rdb       *redis.Client
	prefix    string
	opTimeout time.Duration
}

func NewRedisCache(opts RedisOptions) *RedisCache {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = time.Second
	}
	return &RedisCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:         opts.Addr,
			Password:     opts.Password,
			DB:           opts.DB,
			PoolSize:     opts.PoolSize,
			MinIdleConns: opts.MinIdleConns,
			MaxRetries:   opts.MaxRetries,
			DialTimeout:  opts.DialTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		}),
		prefix:    opts.KeyPrefix,
		opTimeout: opts.OpTimeout,
	}
}

func (r *RedisCache) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

func (r *RedisCache) fullKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.prefix + k
	}
	return out
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.rdb.Set(ctx, r.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	payload, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrCacheMiss
	case err != nil:
		return fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Delete unlinks keys; the memory is reclaimed by Redis in the background.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.rdb.Unlink(ctx, r.fullKeys(keys)...).Err()
}

// DeletePattern removes every key matching the glob pattern, scanning the
// keyspace in batches instead of calling KEYS.
func (r *RedisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.rdb.Scan(ctx, 0, r.prefix+pattern, scanBatch).Iterator()

	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := r.rdb.Unlink(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return fmt.Errorf("redis unlink %s: %w", pattern, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if err := flush(); err != nil {
		return fmt.Errorf("redis unlink %s: %w", pattern, err)
	}
	return nil
}

func (r *RedisCache) Health(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.rdb.Ping(ctx).Err()
}

// Stats reports connection pool counters.
func (r *RedisCache) Stats() map[string]interface{} {
	ps := r.rdb.PoolStats()
	return map[string]interface{}{
		"prefix":        r.prefix,
		"pool_hits":     ps.Hits,
		"pool_misses":   ps.Misses,
		"pool_timeouts": ps.Timeouts,
		"conns_total":   ps.TotalConns,
		"conns_idle":    ps.IdleConns,
		"conns_stale":   ps.StaleConns,
	}
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
