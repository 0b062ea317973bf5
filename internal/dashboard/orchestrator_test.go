package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

// Mock DataProvider
type mockDataProvider struct {
	listEventsFunc      func(ctx context.Context, groupID string) ([]entities.Event, error)
	getConfirmationFunc func(ctx context.Context, eventID, userID string) (*entities.Confirmation, error)
	listQueueFunc       func(ctx context.Context, eventID string) ([]entities.QueueEntry, error)
	listMembersFunc     func(ctx context.Context, groupID string) ([]entities.Member, error)

	mu          sync.Mutex
	memberCalls int
}

func (m *mockDataProvider) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	return nil, nil
}

func (m *mockDataProvider) ListGroupsForUser(ctx context.Context, userID string) ([]entities.Group, error) {
	return nil, nil
}

func (m *mockDataProvider) ListEvents(ctx context.Context, groupID string) ([]entities.Event, error) {
	return m.listEventsFunc(ctx, groupID)
}

func (m *mockDataProvider) GetConfirmation(ctx context.Context, eventID, userID string) (*entities.Confirmation, error) {
	if m.getConfirmationFunc == nil {
		return nil, nil
	}
	return m.getConfirmationFunc(ctx, eventID, userID)
}

func (m *mockDataProvider) ListQueue(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
	if m.listQueueFunc == nil {
		return nil, nil
	}
	return m.listQueueFunc(ctx, eventID)
}

func (m *mockDataProvider) ListMembers(ctx context.Context, groupID string) ([]entities.Member, error) {
	m.mu.Lock()
	m.memberCalls++
	m.mu.Unlock()
	if m.listMembersFunc == nil {
		return nil, nil
	}
	return m.listMembersFunc(ctx, groupID)
}

func (m *mockDataProvider) CreateGroup(ctx context.Context, name string, maxPlayers int, adminID string) (*entities.Group, error) {
	return nil, nil
}

func (m *mockDataProvider) CreateMembership(ctx context.Context, groupID, userID string, membershipType constants.MembershipType) error {
	return nil
}

func (m *mockDataProvider) UpdateMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) error {
	return nil
}

func (m *mockDataProvider) CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (*entities.Event, error) {
	return nil, nil
}

func (m *mockDataProvider) UpdateEventStatus(ctx context.Context, eventID string, status constants.EventStatus) error {
	return nil
}

func (m *mockDataProvider) UpdateConfirmationStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	return nil
}

func (m *mockDataProvider) ConfirmPresence(ctx context.Context, eventID string) error {
	return nil
}

func (m *mockDataProvider) AdminForceStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	return nil
}

type staticGroups map[string]entities.Group

func (s staticGroups) Group(id string) (entities.Group, bool) {
	g, ok := s[id]
	return g, ok
}

func intPtr(v int) *int { return &v }

var baseTime = time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

func openEvent(id, groupID string) entities.Event {
	return entities.Event{ID: id, GroupID: groupID, ScheduledAt: baseTime, Status: constants.EventOpen, CreatedAt: baseTime}
}

func TestOrchestrator_StaleRunDoesNotOverwriteNewer(t *testing.T) {
	releaseA := make(chan struct{})
	startedA := make(chan struct{})
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			if groupID == "A" {
				close(startedA)
				<-releaseA
			}
			return []entities.Event{openEvent("ev-"+groupID, groupID)}, nil
		},
	}
	groups := staticGroups{"A": {ID: "A"}, "B": {ID: "B"}}
	o := NewOrchestrator(data, groups, func() string { return "u1" }, nil, nil)

	var published []string
	var mu sync.Mutex
	o.Subscribe(func(v View) {
		mu.Lock()
		published = append(published, v.GroupID)
		mu.Unlock()
	})

	errA := make(chan error, 1)
	go func() {
		_, err := o.LoadForGroup(context.Background(), "A")
		errA <- err
	}()
	<-startedA

	viewB, err := o.LoadForGroup(context.Background(), "B")
	if err != nil {
		t.Fatalf("Expected B to load, got %v", err)
	}
	if viewB.GroupID != "B" {
		t.Fatalf("Expected view for B, got %q", viewB.GroupID)
	}

	close(releaseA)
	if err := <-errA; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded for A, got %v", err)
	}

	if got := o.View().GroupID; got != "B" {
		t.Errorf("Expected published view to stay on B, got %q", got)
	}
	if got := o.View().ActiveEvent; got == nil || got.ID != "ev-B" {
		t.Errorf("Expected B's active event, got %+v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, id := range published {
		if id == "A" {
			t.Errorf("Expected A never published, got %v", published)
		}
	}
}

func TestOrchestrator_QueueOrdering(t *testing.T) {
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			return []entities.Event{openEvent("e1", groupID)}, nil
		},
		listQueueFunc: func(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
			return []entities.QueueEntry{
				{Confirmation: entities.Confirmation{UserID: "w2", Status: constants.ConfirmationWaitlisted, QueuePosition: intPtr(2)}},
				{Confirmation: entities.Confirmation{UserID: "c1", Status: constants.ConfirmationConfirmed}},
				{Confirmation: entities.Confirmation{UserID: "o1", Status: constants.ConfirmationOut}},
				{Confirmation: entities.Confirmation{UserID: "w1", Status: constants.ConfirmationWaitlisted, QueuePosition: intPtr(1)}},
			}, nil
		},
	}
	o := NewOrchestrator(data, staticGroups{"g": {ID: "g"}}, func() string { return "u1" }, nil, nil)

	view, err := o.LoadForGroup(context.Background(), "g")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := []string{"c1", "w1", "w2", "o1"}
	if len(view.Queue) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(view.Queue))
	}
	for i, id := range want {
		if view.Queue[i].UserID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, view.Queue[i].UserID)
		}
	}
	if view.ConfirmedCount() != 1 {
		t.Errorf("Expected 1 confirmed, got %d", view.ConfirmedCount())
	}
}

func TestOrchestrator_MembersOnlyForAdmin(t *testing.T) {
	newData := func() *mockDataProvider {
		return &mockDataProvider{
			listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
				return nil, nil
			},
			listMembersFunc: func(ctx context.Context, groupID string) ([]entities.Member, error) {
				return []entities.Member{
					{Membership: entities.Membership{ID: "m2", CreatedAt: baseTime.Add(time.Hour)}},
					{Membership: entities.Membership{ID: "m1", CreatedAt: baseTime}},
				}, nil
			},
		}
	}
	groups := staticGroups{"g": {ID: "g", AdminID: "admin"}}

	adminData := newData()
	admin := NewOrchestrator(adminData, groups, func() string { return "admin" }, nil, nil)
	view, _ := admin.LoadForGroup(context.Background(), "g")
	if !view.IsAdmin || len(view.Members) != 2 || view.Members[0].ID != "m1" {
		t.Errorf("Expected admin to see members in join order, got %+v", view.Members)
	}
	if view.ActiveEvent != nil {
		t.Errorf("Expected no active event without events, got %+v", view.ActiveEvent)
	}

	playerData := newData()
	player := NewOrchestrator(playerData, groups, func() string { return "player" }, nil, nil)
	view, _ = player.LoadForGroup(context.Background(), "g")
	if view.IsAdmin || view.Members != nil {
		t.Errorf("Expected no member list for non-admin, got %+v", view.Members)
	}
	if playerData.memberCalls != 0 {
		t.Errorf("Expected members never fetched for non-admin, got %d calls", playerData.memberCalls)
	}
}

func TestOrchestrator_EventsFailureKeepsPreviousView(t *testing.T) {
	fail := false
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			if fail {
				return nil, errors.New("connection reset")
			}
			return []entities.Event{openEvent("e1", groupID)}, nil
		},
	}
	o := NewOrchestrator(data, staticGroups{}, func() string { return "u1" }, nil, nil)
	ctx := context.Background()

	if _, err := o.LoadForGroup(ctx, "g"); err != nil {
		t.Fatalf("Expected first load to succeed, got %v", err)
	}

	fail = true
	view, err := o.Refresh(ctx)
	if err == nil {
		t.Fatal("Expected refresh error")
	}
	if view.ActiveEvent == nil || view.ActiveEvent.ID != "e1" {
		t.Errorf("Expected previous data kept, got %+v", view.ActiveEvent)
	}
	if view.Notice != "connection reset" {
		t.Errorf("Expected notice, got %q", view.Notice)
	}

	view, _ = o.LoadForGroup(ctx, "other")
	if view.GroupID != "other" || view.ActiveEvent != nil || view.Notice == "" {
		t.Errorf("Expected empty view with notice for a new group, got %+v", view)
	}
}

func TestOrchestrator_AttendanceFailureClearsBoth(t *testing.T) {
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			return []entities.Event{openEvent("e1", groupID)}, nil
		},
		getConfirmationFunc: func(ctx context.Context, eventID, userID string) (*entities.Confirmation, error) {
			return &entities.Confirmation{EventID: eventID, UserID: userID, Status: constants.ConfirmationConfirmed}, nil
		},
		listQueueFunc: func(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
			return nil, errors.New("queue unavailable")
		},
	}
	o := NewOrchestrator(data, staticGroups{}, func() string { return "u1" }, nil, nil)

	view, err := o.LoadForGroup(context.Background(), "g")
	if err == nil {
		t.Fatal("Expected error")
	}
	if view.MyConfirmation != nil || view.Queue != nil {
		t.Errorf("Expected confirmation and queue cleared, got %+v / %+v", view.MyConfirmation, view.Queue)
	}
	if view.ActiveEvent == nil {
		t.Error("Expected events to remain")
	}
}

func TestOrchestrator_PipelineHoldsBusyGate(t *testing.T) {
	gate := common.NewBusyGate()
	release := make(chan struct{})
	started := make(chan struct{})
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			close(started)
			<-release
			return nil, nil
		},
	}
	o := NewOrchestrator(data, staticGroups{}, func() string { return "u1" }, gate, nil)

	done := make(chan struct{})
	go func() {
		o.LoadForGroup(context.Background(), "g")
		close(done)
	}()
	<-started

	if gate.TryBeginMutation() {
		t.Error("Expected mutations rejected while the pipeline runs")
	}
	close(release)
	<-done
	if gate.Busy() {
		t.Error("Expected gate released after the pipeline")
	}
}

func TestOrchestrator_Reset(t *testing.T) {
	data := &mockDataProvider{
		listEventsFunc: func(ctx context.Context, groupID string) ([]entities.Event, error) {
			return []entities.Event{openEvent("e1", groupID)}, nil
		},
	}
	o := NewOrchestrator(data, staticGroups{}, func() string { return "u1" }, nil, nil)
	o.LoadForGroup(context.Background(), "g")

	o.Reset()
	if !o.View().Empty() || o.GroupID() != "" {
		t.Errorf("Expected empty view after reset, got %+v", o.View())
	}
}
