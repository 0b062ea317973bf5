package selection

import (
	"context"
	"errors"
	"sort"
	"sync"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/models/entities"
)

var ErrUnknownGroup = errors.New(constants.MsgUnknownGroup)

// PreferenceStore persists the last selected group across restarts. Both the
// gorm and the redis preference services satisfy it.
type PreferenceStore interface {
	Load(ctx context.Context, name string) (string, bool, error)
	Save(ctx context.Context, name, value string) error
}

// Listener receives the newly selected group id, "" when nothing is selected.
type Listener func(groupID string)

// Store holds the group list of the signed-in user and which one is selected.
type Store struct {
	mu        sync.RWMutex
	prefs     PreferenceStore
	groups    []entities.Group
	current   string
	persisted string
	loaded    bool
	listeners map[int]Listener
	nextID    int
}

// NewStore creates a store; prefs may be nil to keep the selection in memory only.
func NewStore(prefs PreferenceStore) *Store {
	return &Store{prefs: prefs, listeners: make(map[int]Listener)}
}

// Resolve picks the group to show: the current selection if still listed,
// else the persisted one if listed, else the first group, else none.
func Resolve(current, persisted string, groups []entities.Group) string {
	if contains(groups, current) {
		return current
	}
	if contains(groups, persisted) {
		return persisted
	}
	if len(groups) > 0 {
		return groups[0].ID
	}
	return ""
}

func contains(groups []entities.Group, id string) bool {
	if id == "" {
		return false
	}
	for _, g := range groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

// SetGroups replaces the group list and re-resolves the selection.
func (s *Store) SetGroups(ctx context.Context, groups []entities.Group) string {
	s.loadPersisted(ctx)

	s.mu.Lock()
	s.groups = append([]entities.Group(nil), groups...)
	next := Resolve(s.current, s.persisted, s.groups)
	changed := next != s.current
	s.current = next
	s.mu.Unlock()

	if changed {
		s.persist(ctx, next)
		s.notify(next)
	}
	return next
}

// Select switches to groupID, which must be one of the listed groups.
func (s *Store) Select(ctx context.Context, groupID string) error {
	s.mu.Lock()
	if !contains(s.groups, groupID) {
		s.mu.Unlock()
		return ErrUnknownGroup
	}
	changed := groupID != s.current
	s.current = groupID
	s.mu.Unlock()

	if changed {
		s.persist(ctx, groupID)
		s.notify(groupID)
	}
	return nil
}

// Clear forgets the groups and the in-memory selection. The persisted value
// stays so the next sign-in lands on the same group.
func (s *Store) Clear() {
	s.mu.Lock()
	had := s.current != ""
	s.current = ""
	s.groups = nil
	s.mu.Unlock()

	if had {
		s.notify("")
	}
}

func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Groups() []entities.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Group(nil), s.groups...)
}

// Group looks up a listed group by id.
func (s *Store) Group(groupID string) (entities.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return entities.Group{}, false
}

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

func (s *Store) loadPersisted(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded || s.prefs == nil {
		return
	}

	value, ok, err := s.prefs.Load(ctx, constants.PreferenceKeyLastGroup)
	if err != nil {
		logging.Warn("Failed to load last selected group", "error", err.Error())
		return
	}

	s.mu.Lock()
	if ok {
		s.persisted = value
	}
	s.loaded = true
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, groupID string) {
	if groupID == "" {
		return
	}
	s.mu.Lock()
	s.persisted = groupID
	s.mu.Unlock()

	if s.prefs == nil {
		return
	}
	if err := s.prefs.Save(ctx, constants.PreferenceKeyLastGroup, groupID); err != nil {
		logging.Warn("Failed to persist selected group", "group_id", groupID, "error", err.Error())
	}
}

func (s *Store) notify(groupID string) {
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

	logging.Debug("Group selection changed", "group_id", groupID)
	for _, fn := range fns {
		fn(groupID)
	}
}
