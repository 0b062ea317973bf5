package entities

import (
	"time"

	"gestor-pelada/gestor/internal/constants"
)

// Group is a pelada: a recurring pickup game with one admin.
type Group struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AdminID    string `json:"admin_id"`
	MaxPlayers *int   `json:"max_players,omitempty"`
}

func (g Group) IsAdmin(userID string) bool {
	return userID != "" && g.AdminID == userID
}

type Membership struct {
	ID        string                   `json:"id"`
	GroupID   string                   `json:"group_id"`
	UserID    string                   `json:"user_id"`
	Type      constants.MembershipType `json:"type"`
	Active    bool                     `json:"active"`
	CreatedAt time.Time                `json:"created_at"`
}

// Member is a membership joined with the member's profile, as shown to the admin.
type Member struct {
	Membership
	Name  string `json:"name"`
	Email string `json:"email"`
}
