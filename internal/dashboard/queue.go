package dashboard

import (
	"sort"

	"gestor-pelada/gestor/internal/models/entities"
)

// SortQueue orders entries by status (confirmed, waitlisted, out), then by
// queue position with missing positions last. Ties keep their input order.
func SortQueue(entries []entities.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if ra, rb := a.Status.Rank(), b.Status.Rank(); ra != rb {
			return ra < rb
		}
		switch {
		case a.QueuePosition == nil:
			return false
		case b.QueuePosition == nil:
			return true
		}
		return *a.QueuePosition < *b.QueuePosition
	})
}

// SortEvents orders events by scheduled time, earliest first.
func SortEvents(events []entities.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ScheduledAt.Before(events[j].ScheduledAt)
	})
}

// SortMembers orders members by join time.
func SortMembers(members []entities.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
}

// ActiveEvent picks the event the dashboard focuses on from events sorted
// by schedule: the first open one, else the most recently created one,
// else nil. On equal creation times the later scheduled event wins.
func ActiveEvent(events []entities.Event) *entities.Event {
	for i := range events {
		if events[i].IsOpen() {
			e := events[i]
			return &e
		}
	}

	var latest *entities.Event
	for i := range events {
		if latest == nil || !events[i].CreatedAt.Before(latest.CreatedAt) {
			e := events[i]
			latest = &e
		}
	}
	return latest
}
