package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/entities"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/selection"
	"gestor-pelada/gestor/internal/session"

	"golang.org/x/sync/singleflight"
)

// AccountService loads what belongs to the signed-in user: the profile,
// fetched once per session, and the group list that feeds the selection.
type AccountService struct {
	data      providers.DataProvider
	sessions  *session.Store
	selection *selection.Store
	cache     common.CacheInterface
	ttl       time.Duration

	loads singleflight.Group
}

func NewAccountService(data providers.DataProvider, sessions *session.Store, sel *selection.Store, cache common.CacheInterface, ttl time.Duration) *AccountService {
	return &AccountService{
		data:      data,
		sessions:  sessions,
		selection: sel,
		cache:     cache,
		ttl:       ttl,
	}
}

func profileKey(userID string) string {
	return string(constants.CachePrefixProfile) + userID
}

// LoadProfile returns the profile of the session user, fetching it at most
// once per session. A user without a profile row gets one built from the
// session email.
func (s *AccountService) LoadProfile(ctx context.Context) (entities.Profile, error) {
	current, ok := s.sessions.Current()
	if !ok {
		return entities.Profile{}, ErrNotAuthenticated
	}
	if p, ok := s.sessions.Profile(); ok {
		return p, nil
	}

	key := profileKey(current.UserID)
	v, err, shared := s.loads.Do(key, func() (interface{}, error) {
		return s.cache.GetOrSet(key, s.ttl, func() (any, error) {
			p, err := s.data.GetProfile(ctx, current.UserID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return entities.Profile{UserID: current.UserID, Email: current.Email}, nil
			}
			return *p, nil
		})
	})
	if err != nil {
		return entities.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	profile, err := asProfile(v)
	if err != nil {
		s.cache.Delete(key)
		return entities.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	s.sessions.SetProfile(profile)
	logging.Debug("Profile loaded", "user_id", current.UserID, "shared", shared)
	return profile, nil
}

// asProfile accepts the value as stored in memory or as raw JSON from redis.
func asProfile(v interface{}) (entities.Profile, error) {
	switch p := v.(type) {
	case entities.Profile:
		return p, nil
	case json.RawMessage:
		var out entities.Profile
		err := json.Unmarshal(p, &out)
		return out, err
	}
	return entities.Profile{}, fmt.Errorf("unexpected cached profile type %T", v)
}

// ReloadGroups fetches the user's active groups and hands them to the
// selection, returning the group that ends up selected.
func (s *AccountService) ReloadGroups(ctx context.Context) ([]entities.Group, string, error) {
	userID := s.sessions.UserID()
	if userID == "" {
		return nil, "", ErrNotAuthenticated
	}

	groups, err := s.data.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, s.selection.Current(), fmt.Errorf("load groups: %w", err)
	}
	selected := s.selection.SetGroups(ctx, groups)
	logging.Debug("Groups loaded", "user_id", userID, "count", len(groups), "selected", selected)
	return groups, selected, nil
}

// Forget drops cached data of userID, used on sign-out.
func (s *AccountService) Forget(userID string) {
	if userID == "" {
		return
	}
	s.cache.Delete(profileKey(userID))
}
