package common

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"

	"github.com/redis/go-redis/v9"
)

// RedisCacheService implements CacheInterface on a shared Redis client.
// Values come back as json.RawMessage; callers decode them into their type.
type RedisCacheService struct {
	client    *redis.Client
	namespace string
	timeout   time.Duration
	metrics   *metrics.MetricsRegistry
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService scopes every key under namespace. The client stays
// owned by the caller.
func NewRedisCacheService(client *redis.Client, namespace string, metricsReg *metrics.MetricsRegistry) *RedisCacheService {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &RedisCacheService{
		client:    client,
		namespace: namespace,
		timeout:   constants.DefaultRedisTimeout,
		metrics:   metricsReg,
	}
}

func (r *RedisCacheService) key(key string) string {
	return constants.CacheKeyPrefix + r.namespace + ":" + key
}

func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Redis cache: failed to marshal value", "key", key, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.key(key), data, duration).Err(); err != nil {
		logging.Warn("Redis cache: failed to set key", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.metrics.CacheMissesTotal.WithLabelValues(keyPattern(key)).Inc()
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis cache: failed to get key", "key", key, "error", err.Error())
		r.metrics.CacheMissesTotal.WithLabelValues(keyPattern(key)).Inc()
		return nil, false
	}

	r.metrics.CacheHitsTotal.WithLabelValues(keyPattern(key)).Inc()
	return json.RawMessage(data), true
}

func (r *RedisCacheService) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		logging.Warn("Redis cache: failed to delete key", "key", key, "error", err.Error())
	}
}

// GetOrSet returns the cached value for key, or runs loader and caches its
// result. Loader errors are not cached.
func (r *RedisCacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error),
) (interface{}, error) {
	if val, found := r.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	r.Set(key, val, duration)
	return val, nil
}

// Close is a no-op; the shared client is closed by its owner.
func (r *RedisCacheService) Close() error {
	return nil
}
