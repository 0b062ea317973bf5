package entities

import (
	"time"

	"gestor-pelada/gestor/internal/constants"
)

type Event struct {
	ID            string                `json:"id"`
	GroupID       string                `json:"group_id"`
	ScheduledAt   time.Time             `json:"scheduled_at"`
	PriorityUntil *time.Time            `json:"priority_until,omitempty"`
	Status        constants.EventStatus `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
}

func (e Event) IsOpen() bool {
	return e.Status == constants.EventOpen
}

type Confirmation struct {
	ID            string                       `json:"id"`
	EventID       string                       `json:"event_id"`
	UserID        string                       `json:"user_id"`
	Status        constants.ConfirmationStatus `json:"status"`
	QueuePosition *int                         `json:"queue_position,omitempty"`
}

// QueueEntry is a confirmation with the display fields of its user.
type QueueEntry struct {
	Confirmation
	Name  string `json:"name"`
	Email string `json:"email"`
}
