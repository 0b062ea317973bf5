package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

type mockPersister struct {
	loadFunc  func(ctx context.Context) (*entities.Session, error)
	saved     []entities.Session
	clears    int
	saveError error
}

func (m *mockPersister) Load(ctx context.Context) (*entities.Session, error) {
	if m.loadFunc == nil {
		return nil, nil
	}
	return m.loadFunc(ctx)
}

func (m *mockPersister) Save(ctx context.Context, session entities.Session) error {
	m.saved = append(m.saved, session)
	return m.saveError
}

func (m *mockPersister) Clear(ctx context.Context) error {
	m.clears++
	return nil
}

func TestStore_SetNotifiesInOrderAndPersists(t *testing.T) {
	persister := &mockPersister{}
	store := NewStore(persister)

	var order []string
	store.Subscribe(func(c Change) { order = append(order, "first:"+string(c.Kind)) })
	store.Subscribe(func(c Change) { order = append(order, "second:"+string(c.Kind)) })

	store.Set(context.Background(), entities.Session{AccessToken: "at", UserID: "u1"}, constants.SessionSignedIn)

	if len(order) != 2 || order[0] != "first:SIGNED_IN" || order[1] != "second:SIGNED_IN" {
		t.Errorf("Unexpected notification order %v", order)
	}
	if len(persister.saved) != 1 || persister.saved[0].AccessToken != "at" {
		t.Errorf("Expected session persisted, got %+v", persister.saved)
	}
	if store.AccessToken() != "at" || store.UserID() != "u1" {
		t.Errorf("Unexpected current session")
	}
}

func TestStore_ProfileFollowsUser(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	store.SetProfile(entities.Profile{UserID: "u1", Name: "Ana"})
	if _, ok := store.Profile(); ok {
		t.Fatal("Expected profile ignored without a session")
	}

	store.Set(ctx, entities.Session{AccessToken: "a1", UserID: "u1"}, constants.SessionSignedIn)
	store.SetProfile(entities.Profile{UserID: "u1", Name: "Ana"})
	store.Set(ctx, entities.Session{AccessToken: "a2", UserID: "u1"}, constants.SessionTokenRefreshed)
	if p, ok := store.Profile(); !ok || p.Name != "Ana" {
		t.Errorf("Expected profile kept across token refresh, got %+v", p)
	}

	store.Set(ctx, entities.Session{AccessToken: "b1", UserID: "u2"}, constants.SessionSignedIn)
	if _, ok := store.Profile(); ok {
		t.Error("Expected profile dropped when the user changes")
	}
}

func TestStore_ClearNotifiesOnce(t *testing.T) {
	persister := &mockPersister{}
	store := NewStore(persister)
	ctx := context.Background()

	var kinds []constants.SessionEvent
	unsubscribe := store.Subscribe(func(c Change) { kinds = append(kinds, c.Kind) })

	store.Set(ctx, entities.Session{AccessToken: "at", UserID: "u1"}, constants.SessionSignedIn)
	store.Clear(ctx)
	store.Clear(ctx)

	if len(kinds) != 2 || kinds[1] != constants.SessionSignedOut {
		t.Errorf("Expected one sign-out notification, got %v", kinds)
	}
	if _, ok := store.Current(); ok {
		t.Error("Expected no session after Clear")
	}
	if persister.clears != 2 {
		t.Errorf("Expected persisted session cleared each time, got %d", persister.clears)
	}

	unsubscribe()
	store.Set(ctx, entities.Session{AccessToken: "x", UserID: "u1"}, constants.SessionSignedIn)
	if len(kinds) != 2 {
		t.Error("Expected no notification after unsubscribe")
	}
}

func TestStore_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session", func(t *testing.T) {
		persister := &mockPersister{loadFunc: func(ctx context.Context) (*entities.Session, error) {
			return &entities.Session{AccessToken: "at", RefreshToken: "rt", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, nil
		}}
		store := NewStore(persister)
		var kind constants.SessionEvent
		store.Subscribe(func(c Change) { kind = c.Kind })

		restored, err := store.Restore(ctx)
		if err != nil || !restored {
			t.Fatalf("Expected restore, got %v %v", restored, err)
		}
		if kind != constants.SessionInitial {
			t.Errorf("Expected INITIAL_SESSION, got %s", kind)
		}
		if len(persister.saved) != 0 {
			t.Error("Restore must not write back")
		}
	})

	t.Run("expired without refresh token", func(t *testing.T) {
		persister := &mockPersister{loadFunc: func(ctx context.Context) (*entities.Session, error) {
			return &entities.Session{AccessToken: "at", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)}, nil
		}}
		store := NewStore(persister)

		restored, err := store.Restore(ctx)
		if err != nil || restored {
			t.Fatalf("Expected no restore, got %v %v", restored, err)
		}
		if persister.clears != 1 {
			t.Error("Expected expired session cleared")
		}
	})

	t.Run("load error", func(t *testing.T) {
		persister := &mockPersister{loadFunc: func(ctx context.Context) (*entities.Session, error) {
			return nil, errors.New("disk gone")
		}}
		if _, err := NewStore(persister).Restore(ctx); err == nil {
			t.Error("Expected load error")
		}
	})
}
