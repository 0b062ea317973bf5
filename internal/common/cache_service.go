package common

import (
	"strings"
	"time"

	"gestor-pelada/gestor/internal/metrics"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process cache for per-session lookups (profile, group list).
type CacheService struct {
	cache   *cache.Cache
	metrics *metrics.MetricsRegistry
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration, metricsReg *metrics.MetricsRegistry) *CacheService {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &CacheService{
		cache:   cache.New(defaultExpiration, cleanUpInterval),
		metrics: metricsReg,
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	cs.cache.Set(key, value, duration)
}

func (cs *CacheService) Get(key string) (interface{}, bool) {
	val, found := cs.cache.Get(key)
	if found {
		cs.metrics.CacheHitsTotal.WithLabelValues(keyPattern(key)).Inc()
	} else {
		cs.metrics.CacheMissesTotal.WithLabelValues(keyPattern(key)).Inc()
	}
	return val, found
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) GetOrSet(
	key string,
	duration time.Duration,
	loader func() (any, error)) (interface{}, error) {
	if val, found := cs.Get(key); found {
		return val, nil
	}

	val, err := loader()
	if err != nil {
		return nil, err
	}

	cs.Set(key, val, duration)
	return val, nil
}

// Close flushes the cache
func (cs *CacheService) Close() error {
	cs.cache.Flush()
	return nil
}

// keyPattern keeps metric labels bounded: PROFILE_<uuid> -> PROFILE_
func keyPattern(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return key[:i+1]
	}
	return key
}
