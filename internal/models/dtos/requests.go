package dtos

import "time"

// Local API request bodies.

type AuthModeRequest struct {
	Mode string `json:"mode"`
}

type MagicLinkRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type PasswordSignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordSignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// RedirectCallbackRequest carries the full browser URL, fragment included,
// since fragments never reach the server on their own.
type RedirectCallbackRequest struct {
	URL string `json:"url"`
}

type CreateGroupRequest struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
}

type JoinGroupRequest struct {
	GroupID string `json:"group_id"`
}

type SelectGroupRequest struct {
	GroupID string `json:"group_id"`
}

type CreateEventRequest struct {
	GroupID       string    `json:"group_id"`
	ScheduledAt   Timestamp `json:"scheduled_at"`
	PriorityUntil Timestamp `json:"priority_until"`
}

func (r CreateEventRequest) Schedule() (time.Time, *time.Time) {
	return r.ScheduledAt.Time, r.PriorityUntil.Ptr()
}

type EventStatusRequest struct {
	Status string `json:"status"`
}

type MembershipTypeRequest struct {
	Type string `json:"type"`
}

type ForceStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}
