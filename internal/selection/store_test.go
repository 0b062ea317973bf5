package selection

import (
	"context"
	"errors"
	"testing"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

type mockPreferences struct {
	values map[string]string
	saves  int
	loads  int
}

func newMockPreferences() *mockPreferences {
	return &mockPreferences{values: map[string]string{}}
}

func (m *mockPreferences) Load(ctx context.Context, name string) (string, bool, error) {
	m.loads++
	v, ok := m.values[name]
	return v, ok, nil
}

func (m *mockPreferences) Save(ctx context.Context, name, value string) error {
	m.saves++
	m.values[name] = value
	return nil
}

func groups(ids ...string) []entities.Group {
	out := make([]entities.Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, entities.Group{ID: id, Name: "Pelada " + id})
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		persisted string
		groups    []entities.Group
		want      string
	}{
		{"current listed", "b", "c", groups("a", "b", "c"), "b"},
		{"persisted fallback", "x", "c", groups("a", "b", "c"), "c"},
		{"first fallback", "", "gone", groups("a", "b"), "a"},
		{"empty", "a", "a", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.current, tt.persisted, tt.groups); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStore_SetGroupsUsesPersistedValue(t *testing.T) {
	prefs := newMockPreferences()
	prefs.values[constants.PreferenceKeyLastGroup] = "b"
	store := NewStore(prefs)

	var notified []string
	store.Subscribe(func(id string) { notified = append(notified, id) })

	if got := store.SetGroups(context.Background(), groups("a", "b")); got != "b" {
		t.Fatalf("Expected persisted group b, got %q", got)
	}
	if len(notified) != 1 || notified[0] != "b" {
		t.Errorf("Expected one notification for b, got %v", notified)
	}

	store.SetGroups(context.Background(), groups("a", "b", "c"))
	if len(notified) != 1 {
		t.Errorf("Expected no notification when the selection is unchanged, got %v", notified)
	}
	if prefs.loads != 1 {
		t.Errorf("Expected persisted value read once, got %d", prefs.loads)
	}
}

func TestStore_SelectPersistsAndValidates(t *testing.T) {
	prefs := newMockPreferences()
	store := NewStore(prefs)
	ctx := context.Background()
	store.SetGroups(ctx, groups("a", "b"))

	if err := store.Select(ctx, "zzz"); !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("Expected ErrUnknownGroup, got %v", err)
	}
	if err := store.Select(ctx, "b"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if store.Current() != "b" {
		t.Errorf("Expected b selected, got %q", store.Current())
	}
	if prefs.values[constants.PreferenceKeyLastGroup] != "b" {
		t.Errorf("Expected b persisted, got %q", prefs.values[constants.PreferenceKeyLastGroup])
	}

	saves := prefs.saves
	store.Select(ctx, "b")
	if prefs.saves != saves {
		t.Error("Expected re-selecting the same group to skip persistence")
	}
}

func TestStore_ClearKeepsPersistedValue(t *testing.T) {
	prefs := newMockPreferences()
	store := NewStore(prefs)
	ctx := context.Background()
	store.SetGroups(ctx, groups("a", "b"))
	store.Select(ctx, "b")

	var notified []string
	store.Subscribe(func(id string) { notified = append(notified, id) })
	store.Clear()

	if store.Current() != "" || len(store.Groups()) != 0 {
		t.Errorf("Expected empty selection, got %q with %d groups", store.Current(), len(store.Groups()))
	}
	if len(notified) != 1 || notified[0] != "" {
		t.Errorf("Expected a clear notification, got %v", notified)
	}
	if prefs.values[constants.PreferenceKeyLastGroup] != "b" {
		t.Error("Expected persisted selection to survive Clear")
	}

	if got := store.SetGroups(ctx, groups("a", "b")); got != "b" {
		t.Errorf("Expected persisted group restored after sign in, got %q", got)
	}
}

func TestStore_NoPreferences(t *testing.T) {
	store := NewStore(nil)
	if got := store.SetGroups(context.Background(), groups("a")); got != "a" {
		t.Errorf("Expected first group, got %q", got)
	}
	if _, ok := store.Group("a"); !ok {
		t.Error("Expected group a listed")
	}
}
