package dashboard

import (
	"testing"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

func TestSortQueue_NilPositionsLastAndStable(t *testing.T) {
	entries := []entities.QueueEntry{
		{Confirmation: entities.Confirmation{UserID: "a", Status: constants.ConfirmationWaitlisted}},
		{Confirmation: entities.Confirmation{UserID: "b", Status: constants.ConfirmationWaitlisted, QueuePosition: intPtr(3)}},
		{Confirmation: entities.Confirmation{UserID: "c", Status: constants.ConfirmationConfirmed}},
		{Confirmation: entities.Confirmation{UserID: "d", Status: constants.ConfirmationConfirmed}},
	}
	SortQueue(entries)

	want := []string{"c", "d", "b", "a"}
	for i, id := range want {
		if entries[i].UserID != id {
			t.Errorf("Position %d: expected %s, got %s", i, id, entries[i].UserID)
		}
	}
}

func TestActiveEvent(t *testing.T) {
	day := func(n int) time.Time { return baseTime.AddDate(0, 0, n) }

	if ActiveEvent(nil) != nil {
		t.Error("Expected nil for no events")
	}

	events := []entities.Event{
		{ID: "closed", ScheduledAt: day(1), Status: constants.EventClosed, CreatedAt: day(-1)},
		{ID: "open1", ScheduledAt: day(2), Status: constants.EventOpen, CreatedAt: day(-5)},
		{ID: "open2", ScheduledAt: day(3), Status: constants.EventOpen, CreatedAt: day(0)},
	}
	if got := ActiveEvent(events); got.ID != "open1" {
		t.Errorf("Expected first open event, got %s", got.ID)
	}

	closed := []entities.Event{
		{ID: "old", ScheduledAt: day(1), Status: constants.EventClosed, CreatedAt: day(-3)},
		{ID: "newest", ScheduledAt: day(2), Status: constants.EventClosed, CreatedAt: day(-1)},
		{ID: "middle", ScheduledAt: day(3), Status: constants.EventClosed, CreatedAt: day(-2)},
	}
	if got := ActiveEvent(closed); got.ID != "newest" {
		t.Errorf("Expected most recently created event, got %s", got.ID)
	}

	tied := []entities.Event{
		{ID: "first", ScheduledAt: day(1), Status: constants.EventClosed, CreatedAt: day(0)},
		{ID: "second", ScheduledAt: day(2), Status: constants.EventClosed, CreatedAt: day(0)},
	}
	if got := ActiveEvent(tied); got.ID != "second" {
		t.Errorf("Expected later scheduled event on tie, got %s", got.ID)
	}
}
