package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/entities"

	"github.com/redis/go-redis/v9"
)

// storedSession is the JSON document kept under session:<namespace>.
type storedSession struct {
	Session  entities.Session `json:"session"`
	SavedAt  time.Time        `json:"saved_at"`
	ClientID string           `json:"client_id"`
}

// SessionService keeps the signed-in session in Redis so a restarted client
// resumes without signing in again.
type SessionService struct {
	redis     *redis.Client
	namespace string
}

func NewSessionService(client *redis.Client, namespace string) *SessionService {
	return &SessionService{redis: client, namespace: namespace}
}

func (s *SessionService) key() string {
	return constants.SessionKeyPrefix + s.namespace
}

// Load returns the stored session, or nil when none is stored.
func (s *SessionService) Load(ctx context.Context) (*entities.Session, error) {
	val, err := s.redis.Get(ctx, s.key()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		logging.Warn("Discarding unreadable stored session", "key", s.key(), "error", err.Error())
		_ = s.Clear(ctx)
		return nil, nil
	}

	return &stored.Session, nil
}

// Save stores the session. The key lives as long as the refresh token is
// useful, bounded by the default session TTL.
func (s *SessionService) Save(ctx context.Context, session entities.Session) error {
	data, err := json.Marshal(storedSession{Session: session, SavedAt: time.Now().UTC(), ClientID: s.namespace})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.redis.Set(ctx, s.key(), data, constants.DefaultSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
