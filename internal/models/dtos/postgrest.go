package dtos

import (
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

// PostgREST row shapes. Column names follow the backend schema.

type UserRow struct {
	ID    string  `json:"id" db:"id"`
	Name  *string `json:"name" db:"name"`
	Email *string `json:"email" db:"email"`
}

func (r UserRow) ToProfile() entities.Profile {
	return entities.Profile{UserID: r.ID, Name: deref(r.Name), Email: deref(r.Email)}
}

type GroupRow struct {
	ID         string `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	AdminID    string `json:"admin_id" db:"admin_id"`
	MaxPlayers *int   `json:"max_players" db:"max_players"`
}

func (r GroupRow) ToEntity() entities.Group {
	return entities.Group{ID: r.ID, Name: r.Name, AdminID: r.AdminID, MaxPlayers: r.MaxPlayers}
}

// MembershipGroupRow is pelada_users embedding its pelada.
type MembershipGroupRow struct {
	ID     string                   `json:"id"`
	Tipo   constants.MembershipType `json:"tipo"`
	Ativo  bool                     `json:"ativo"`
	Pelada *GroupRow                `json:"peladas"`
}

type EventRow struct {
	ID            string                `json:"id"`
	PeladaID      string                `json:"pelada_id"`
	DataEvento    Timestamp             `json:"data_evento"`
	PrioridadeAte Timestamp             `json:"prioridade_ate"`
	Status        constants.EventStatus `json:"status"`
	CreatedAt     Timestamp             `json:"created_at"`
}

func (r EventRow) ToEntity() entities.Event {
	return entities.Event{
		ID:            r.ID,
		GroupID:       r.PeladaID,
		ScheduledAt:   r.DataEvento.Time,
		PriorityUntil: r.PrioridadeAte.Ptr(),
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.Time,
	}
}

// ConfirmationRow is confirmacoes, optionally embedding its user.
type ConfirmationRow struct {
	ID        string                       `json:"id"`
	EventoID  string                       `json:"evento_id"`
	UserID    string                       `json:"user_id"`
	Status    constants.ConfirmationStatus `json:"status"`
	OrdemFila *int                         `json:"ordem_fila"`
	User      *UserRow                     `json:"users,omitempty"`
}

func (r ConfirmationRow) ToEntity() entities.Confirmation {
	return entities.Confirmation{
		ID:            r.ID,
		EventID:       r.EventoID,
		UserID:        r.UserID,
		Status:        r.Status,
		QueuePosition: r.OrdemFila,
	}
}

func (r ConfirmationRow) ToQueueEntry() entities.QueueEntry {
	entry := entities.QueueEntry{Confirmation: r.ToEntity()}
	if r.User != nil {
		entry.Name = deref(r.User.Name)
		entry.Email = deref(r.User.Email)
	}
	return entry
}

// MemberRow is pelada_users embedding its user.
type MemberRow struct {
	ID        string                   `json:"id"`
	PeladaID  string                   `json:"pelada_id"`
	UserID    string                   `json:"user_id"`
	Tipo      constants.MembershipType `json:"tipo"`
	Ativo     bool                     `json:"ativo"`
	CreatedAt Timestamp                `json:"created_at"`
	User      *UserRow                 `json:"users,omitempty"`
}

func (r MemberRow) ToEntity() entities.Member {
	m := entities.Member{Membership: entities.Membership{
		ID:        r.ID,
		GroupID:   r.PeladaID,
		UserID:    r.UserID,
		Type:      r.Tipo,
		Active:    r.Ativo,
		CreatedAt: r.CreatedAt.Time,
	}}
	if r.User != nil {
		m.Name = deref(r.User.Name)
		m.Email = deref(r.User.Email)
	}
	return m
}

type GroupInsert struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
	AdminID    string `json:"admin_id"`
}

type MembershipInsert struct {
	PeladaID string                   `json:"pelada_id"`
	UserID   string                   `json:"user_id"`
	Tipo     constants.MembershipType `json:"tipo"`
	Ativo    bool                     `json:"ativo"`
}

type EventInsert struct {
	PeladaID      string                `json:"pelada_id"`
	DataEvento    Timestamp             `json:"data_evento"`
	Status        constants.EventStatus `json:"status"`
	PrioridadeAte Timestamp             `json:"prioridade_ate"`
}

type ConfirmPresenceArgs struct {
	EventoID string `json:"p_evento_id"`
}

type AdminForceStatusArgs struct {
	EventoID string                       `json:"p_evento_id"`
	UserID   string                       `json:"p_user_id"`
	Status   constants.ConfirmationStatus `json:"p_status"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
