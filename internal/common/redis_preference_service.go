package common

import (
	"context"
	"errors"
	"fmt"

	"gestor-pelada/gestor/internal/constants"

	"github.com/redis/go-redis/v9"
)

// RedisPreferenceService persists client preferences in Redis without expiry.
type RedisPreferenceService struct {
	redis     *redis.Client
	namespace string
}

func NewRedisPreferenceService(client *redis.Client, namespace string) *RedisPreferenceService {
	return &RedisPreferenceService{redis: client, namespace: namespace}
}

func (s *RedisPreferenceService) key(name string) string {
	return constants.PreferenceKeyPrefix + s.namespace + ":" + name
}

func (s *RedisPreferenceService) Load(ctx context.Context, name string) (string, bool, error) {
	val, err := s.redis.Get(ctx, s.key(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load preference %s: %w", name, err)
	}
	return val, true, nil
}

func (s *RedisPreferenceService) Save(ctx context.Context, name, value string) error {
	if err := s.redis.Set(ctx, s.key(name), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preference %s: %w", name, err)
	}
	return nil
}

func (s *RedisPreferenceService) Delete(ctx context.Context, name string) error {
	if err := s.redis.Del(ctx, s.key(name)).Err(); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", name, err)
	}
	return nil
}
