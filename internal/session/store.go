package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/entities"
)

// Change is published to subscribers whenever the session is set or cleared.
// Session is nil for SessionSignedOut.
type Change struct {
	Kind    constants.SessionEvent
	Session *entities.Session
}

type Listener func(Change)

// Persister saves the session so a restarted client resumes signed in.
type Persister interface {
	Load(ctx context.Context) (*entities.Session, error)
	Save(ctx context.Context, session entities.Session) error
	Clear(ctx context.Context) error
}

// Store owns the current session and the profile fetched for it.
type Store struct {
	mu        sync.RWMutex
	session   *entities.Session
	profile   *entities.Profile
	listeners map[int]Listener
	nextID    int

	persister Persister
	now       func() time.Time
}

// NewStore creates an empty store. persister may be nil.
func NewStore(persister Persister) *Store {
	return &Store{
		listeners: make(map[int]Listener),
		persister: persister,
		now:       time.Now,
	}
}

// Restore loads a persisted session and publishes SessionInitial. An expired
// session is kept only when it carries a refresh token.
func (s *Store) Restore(ctx context.Context) (bool, error) {
	if s.persister == nil {
		return false, nil
	}

	saved, err := s.persister.Load(ctx)
	if err != nil {
		return false, err
	}
	if saved == nil || saved.AccessToken == "" {
		return false, nil
	}
	if saved.Expired(s.now()) && saved.RefreshToken == "" {
		logging.Info("Dropping expired stored session", "user_id", saved.UserID)
		_ = s.persister.Clear(ctx)
		return false, nil
	}

	s.apply(*saved, constants.SessionInitial)
	return true, nil
}

// Set replaces the session and notifies subscribers with kind.
func (s *Store) Set(ctx context.Context, session entities.Session, kind constants.SessionEvent) {
	s.apply(session, kind)

	if s.persister != nil {
		if err := s.persister.Save(ctx, session); err != nil {
			logging.Warn("Failed to persist session", "user_id", session.UserID, "error", err.Error())
		}
	}
}

func (s *Store) apply(session entities.Session, kind constants.SessionEvent) {
	s.mu.Lock()
	if s.session == nil || s.session.UserID != session.UserID {
		s.profile = nil
	}
	current := session
	s.session = &current
	s.mu.Unlock()

	logging.Debug("Session changed", "kind", kind, "user_id", session.UserID)
	out := session
	s.notify(Change{Kind: kind, Session: &out})
}

// Clear drops the session and profile and notifies SessionSignedOut.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.session != nil
	s.session = nil
	s.profile = nil
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Clear(ctx); err != nil {
			logging.Warn("Failed to clear persisted session", "error", err.Error())
		}
	}
	if had {
		s.notify(Change{Kind: constants.SessionSignedOut})
	}
}

func (s *Store) Current() (entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return entities.Session{}, false
	}
	return *s.session, true
}

// AccessToken returns the bearer token, or "" when signed out.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.UserID
}

func (s *Store) Profile() (entities.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return entities.Profile{}, false
	}
	return *s.profile, true
}

// SetProfile stores p when it belongs to the current session user.
func (s *Store) SetProfile(p entities.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.UserID != p.UserID {
		return
	}
	s.profile = &p
}

// Subscribe registers fn and returns a func removing it. Listeners run
// synchronously in subscription order, outside the store lock.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(change Change) {
	s.mu.RLock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}
