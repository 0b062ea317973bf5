package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gestor-pelada/gestor/internal/auth"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/db"
	"gestor-pelada/gestor/internal/db/repositories"
	"gestor-pelada/gestor/internal/providers"

	"github.com/google/uuid"
)

type appFixture struct {
	backend *providers.MemoryProvider
	active  *App
	apps    map[string]*App
}

func newAppFixture(t *testing.T, names ...string) *appFixture {
	t.Helper()
	f := &appFixture{apps: map[string]*App{}}
	f.backend = providers.NewMemoryProvider(func() string {
		if f.active == nil {
			return ""
		}
		return f.active.Sessions.AccessToken()
	})

	for _, name := range names {
		f.backend.SeedUser(strings.ToLower(name)+"@pelada.test", "secret1", name)

		store, err := db.OpenClientStore("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
		if err != nil {
			t.Fatalf("Failed to open client store: %v", err)
		}
		a := New(Options{
			Auth:            f.backend,
			Data:            f.backend,
			Preferences:     repositories.NewPreferenceRepositoryGORM(store, name),
			Persister:       repositories.NewSessionRepositoryGORM(store, name),
			EntryURL:        "http://localhost:8787/",
			RedirectURL:     "http://localhost:8787/auth/callback",
			ProfileCacheTTL: time.Minute,
		})
		t.Cleanup(a.Close)
		f.apps[name] = a
	}
	return f
}

// as makes name's app the caller of the next backend calls.
func (f *appFixture) as(name string) *App {
	f.active = f.apps[name]
	return f.active
}

func (f *appFixture) signIn(t *testing.T, name string) *App {
	t.Helper()
	a := f.as(name)
	a.Auth.SetMode(auth.ModePassword)
	if err := a.Auth.SignInWithPassword(context.Background(), strings.ToLower(name)+"@pelada.test", "secret1"); err != nil {
		t.Fatalf("Sign in %s failed: %v", name, err)
	}
	return a
}

func TestApp_CapacityTwoScenario(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana", "Bia", "Caio")

	for _, name := range []string{"Ana", "Bia", "Caio"} {
		f.signIn(t, name)
	}

	ana := f.as("Ana")
	created, err := ana.Actions.CreateGroup(ctx, "Quinta", 2)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if ana.Selection.Current() != created.GroupID || ana.Dashboard.View().GroupID != created.GroupID {
		t.Fatalf("Expected new group selected and loaded")
	}

	for _, name := range []string{"Bia", "Caio"} {
		if _, err := f.as(name).Actions.JoinGroup(ctx, created.GroupID); err != nil {
			t.Fatalf("%s JoinGroup failed: %v", name, err)
		}
	}

	f.as("Ana")
	if _, err := ana.Actions.CreateEvent(ctx, "", time.Now().Add(48*time.Hour), nil); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	for _, name := range []string{"Ana", "Bia", "Caio"} {
		a := f.as(name)
		if _, err := a.Dashboard.Refresh(ctx); err != nil {
			t.Fatalf("%s refresh failed: %v", name, err)
		}
		if _, err := a.Actions.ConfirmAttendance(ctx, ""); err != nil {
			t.Fatalf("%s ConfirmAttendance failed: %v", name, err)
		}
	}

	f.as("Ana")
	ana.Dashboard.Refresh(ctx)
	view := ana.Dashboard.View()

	confirmed, waitlisted := 0, 0
	for _, q := range view.Queue {
		switch q.Status {
		case constants.ConfirmationConfirmed:
			confirmed++
		case constants.ConfirmationWaitlisted:
			waitlisted++
			if q.QueuePosition == nil || *q.QueuePosition != 1 {
				t.Errorf("Expected waitlisted position 1, got %v", q.QueuePosition)
			}
			if q.Name != "Caio" {
				t.Errorf("Expected Caio waitlisted, got %s", q.Name)
			}
		}
	}
	if confirmed != 2 || waitlisted != 1 {
		t.Errorf("Expected 2 confirmed and 1 waitlisted, got %d and %d", confirmed, waitlisted)
	}
	if len(view.Queue) != 3 || view.Queue[2].Status != constants.ConfirmationWaitlisted {
		t.Errorf("Expected waitlisted entry last, got %+v", view.Queue)
	}

	caio := f.as("Caio")
	caio.Dashboard.Refresh(ctx)
	mine := caio.Dashboard.View().MyConfirmation
	if mine == nil || mine.Status != constants.ConfirmationWaitlisted {
		t.Errorf("Expected Caio's own confirmation waitlisted, got %+v", mine)
	}
	if caio.Dashboard.View().IsAdmin {
		t.Error("Expected Caio not admin")
	}
}

func TestApp_SignOutClearsStateAndKeepsLastGroup(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana")

	ana := f.signIn(t, "Ana")
	if _, ok := ana.Sessions.Profile(); !ok {
		t.Error("Expected profile loaded on sign in")
	}

	first, _ := ana.Actions.CreateGroup(ctx, "Quinta", 10)
	second, _ := ana.Actions.CreateGroup(ctx, "Sabado", 10)
	if err := ana.Selection.Select(ctx, first.GroupID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if ana.Dashboard.View().GroupID != first.GroupID {
		t.Fatalf("Expected dashboard on first group")
	}

	if err := ana.Auth.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if ana.Auth.Snapshot().Phase != auth.PhaseAnonymous {
		t.Errorf("Expected anonymous, got %s", ana.Auth.Snapshot().Phase)
	}
	if ana.Selection.Current() != "" || !ana.Dashboard.View().Empty() {
		t.Error("Expected selection and dashboard cleared")
	}
	if _, ok := ana.Sessions.Profile(); ok {
		t.Error("Expected profile cleared")
	}

	f.signIn(t, "Ana")
	if ana.Selection.Current() != first.GroupID {
		t.Errorf("Expected persisted group %s after sign in, got %s (other %s)", first.GroupID, ana.Selection.Current(), second.GroupID)
	}
}

func TestApp_RestoresPersistedSession(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana")
	ana := f.signIn(t, "Ana")
	ana.Actions.CreateGroup(ctx, "Quinta", 10)

	store, err := db.OpenClientStore("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open client store: %v", err)
	}
	persister := repositories.NewSessionRepositoryGORM(store, "restore")
	current, _ := ana.Sessions.Current()
	if err := persister.Save(ctx, current); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := New(Options{
		Auth:      f.backend,
		Data:      f.backend,
		Persister: persister,
		EntryURL:  "http://localhost:8787/",
	})
	defer restored.Close()
	f.active = restored

	if err := restored.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if restored.Auth.Snapshot().Phase != auth.PhaseAuthenticated {
		t.Errorf("Expected authenticated after restore, got %s", restored.Auth.Snapshot().Phase)
	}
	if len(restored.Selection.Groups()) != 1 || restored.Dashboard.View().Empty() {
		t.Error("Expected groups and dashboard loaded after restore")
	}
}

func TestApp_RecoveryEntryWinsOverRestoredSession(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana")
	ana := f.signIn(t, "Ana")

	store, _ := db.OpenClientStore("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	persister := repositories.NewSessionRepositoryGORM(store, "recovery")
	current, _ := ana.Sessions.Current()
	persister.Save(ctx, current)

	a := New(Options{
		Auth:      f.backend,
		Data:      f.backend,
		Persister: persister,
		EntryURL:  "http://localhost:8787/#access_token=x&type=recovery",
	})
	defer a.Close()
	f.active = a
	a.Start(ctx)

	if a.Auth.Snapshot().Phase != auth.PhasePasswordRecovery {
		t.Errorf("Expected password-recovery, got %s", a.Auth.Snapshot().Phase)
	}
}

func TestApp_ConcurrentSelectionsLeaveViewOnSelectedGroup(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana")
	ana := f.signIn(t, "Ana")

	var ids []string
	for _, name := range []string{"Quinta", "Sabado", "Domingo"} {
		res, err := ana.Actions.CreateGroup(ctx, name, 10)
		if err != nil {
			t.Fatalf("CreateGroup %s failed: %v", name, err)
		}
		ids = append(ids, res.GroupID)
	}

	for i := 0; i < 200; i++ {
		if err := ana.Selection.Select(ctx, ids[2]); err != nil {
			t.Fatalf("Select failed: %v", err)
		}

		var wg sync.WaitGroup
		for _, id := range ids[:2] {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				ana.Selection.Select(ctx, id)
			}(id)
		}
		wg.Wait()

		if got, want := ana.Dashboard.View().GroupID, ana.Selection.Current(); got != want {
			t.Fatalf("Iteration %d: expected view on selected group %s, got %s", i, want, got)
		}
	}
}

func TestApp_RecoveryLinkAsEntryCompletesRecovery(t *testing.T) {
	ctx := context.Background()
	f := newAppFixture(t, "Ana")

	if err := f.backend.ResetPasswordForEmail(ctx, "ana@pelada.test", "http://localhost:8787/auth/callback"); err != nil {
		t.Fatalf("ResetPasswordForEmail failed: %v", err)
	}
	mail, ok := f.backend.LastMailTo("ana@pelada.test")
	if !ok {
		t.Fatal("Expected a recovery mail")
	}

	a := New(Options{
		Auth:     f.backend,
		Data:     f.backend,
		EntryURL: mail.Link,
	})
	defer a.Close()
	f.active = a

	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if a.Auth.Snapshot().Phase != auth.PhasePasswordRecovery {
		t.Fatalf("Expected password-recovery, got %s", a.Auth.Snapshot().Phase)
	}
	if _, ok := a.Sessions.Current(); !ok {
		t.Fatal("Expected the link tokens exchanged for a session")
	}
	if strings.Contains(a.Location.Current(), "access_token") {
		t.Errorf("Expected tokens removed from the location, got %s", a.Location.Current())
	}

	if err := a.Auth.UpdatePassword(ctx, "brandnew", "brandnew"); err != nil {
		t.Fatalf("UpdatePassword failed: %v", err)
	}
	if a.Auth.Snapshot().Phase != auth.PhaseAuthenticated {
		t.Errorf("Expected authenticated after password update, got %s", a.Auth.Snapshot().Phase)
	}
	if _, err := f.backend.SignInWithPassword(ctx, "ana@pelada.test", "brandnew"); err != nil {
		t.Errorf("Expected the new password to work, got %v", err)
	}
}
