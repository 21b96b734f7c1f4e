package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"lukechampine.com/blake3"

	"github.com/tensorplex-labs/reviewsim/internal/config"
)

// ResultCache stores values of type T as zstd-compressed JSON under
// content-addressed keys. Store failures are logged and never fail the
// caller; the value is computed instead.
type ResultCache[T any] struct {
	store  Store
	ttl    time.Duration
	prefix string
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

func NewResultCache[T any](store Store, ttl time.Duration, prefix string) (*ResultCache[T], error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &ResultCache[T]{
		store:  store,
		ttl:    ttl,
		prefix: prefix,
		enc:    enc,
		dec:    dec,
	}, nil
}

// Key hashes the JSON form of v with BLAKE3 under the given namespace.
func (c *ResultCache[T]) Key(namespace string, v any) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal cache key: %w", err)
	}
	sum := blake3.Sum256(data)
	return fmt.Sprintf("%s:%s:%s", c.prefix, namespace, hex.EncodeToString(sum[:])), nil
}

// Get returns the cached value and whether it was found.
func (c *ResultCache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return zero, false
	}
	if raw == "" {
		return zero, false
	}

	data, err := c.dec.DecodeAll([]byte(raw), nil)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return zero, false
	}
	var v T
	if err := sonic.Unmarshal(data, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding malformed cache entry")
		return zero, false
	}
	return v, true
}

func (c *ResultCache[T]) Set(ctx context.Context, key string, v T) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.store.Set(ctx, key, string(c.enc.EncodeAll(data, nil)), c.ttl)
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result. The bool reports a cache hit. Errors from compute are returned
// unchanged and nothing is cached.
func (c *ResultCache[T]) GetOrCompute(ctx context.Context, key string, compute func() (T, error)) (T, bool, error) {
	if v, ok := c.Get(ctx, key); ok {
		log.Trace().Str("key", key).Msg("cache hit")
		return v, true, nil
	}

	v, err := compute()
	if err != nil {
		return v, false, err
	}
	if err := c.Set(ctx, key, v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return v, false, nil
}

// NewStore builds the Store selected by cfg. It returns nil for the "none"
// backend.
func NewStore(cacheCfg config.CacheEnvConfig, redisCfg *config.RedisEnvConfig) (Store, error) {
	switch cacheCfg.Backend() {
	case config.CacheBackendNone, "":
		return nil, nil
	case config.CacheBackendMemory:
		return NewMemory(), nil
	case config.CacheBackendRedis:
		r, err := NewRedis(redisCfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis at %s: %w", redisCfg.RedisAddress(), err)
		}
		return r, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cacheCfg.CacheBackend)
}
