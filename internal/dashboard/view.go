package dashboard

import (
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

// View is one published result of the dashboard pipeline for a group.
// Members is only loaded for the group admin.
type View struct {
	GroupID        string                 `json:"group_id"`
	Group          *entities.Group        `json:"group,omitempty"`
	Events         []entities.Event       `json:"events"`
	ActiveEvent    *entities.Event        `json:"active_event,omitempty"`
	MyConfirmation *entities.Confirmation `json:"my_confirmation,omitempty"`
	Queue          []entities.QueueEntry  `json:"queue"`
	Members        []entities.Member      `json:"members,omitempty"`
	IsAdmin        bool                   `json:"is_admin"`
	Version        uint64                 `json:"version"`
	LoadedAt       time.Time              `json:"loaded_at"`
	Notice         string                 `json:"notice,omitempty"`
}

// Empty reports whether no group is loaded.
func (v View) Empty() bool {
	return v.GroupID == ""
}

// ConfirmedCount is the number of confirmed players in the queue.
func (v View) ConfirmedCount() int {
	n := 0
	for _, q := range v.Queue {
		if q.Status == constants.ConfirmationConfirmed {
			n++
		}
	}
	return n
}
