package responses

import "gestor-pelada/gestor/internal/models/entities"

// AuthStateResponse is the auth controller state as seen by the front end.
type AuthStateResponse struct {
	Phase           string            `json:"phase"`
	Mode            string            `json:"mode"`
	Email           string            `json:"email,omitempty"`
	ResendRemaining int               `json:"resend_remaining"`
	Busy            bool              `json:"busy"`
	Notice          string            `json:"notice,omitempty"`
	Profile         *entities.Profile `json:"profile,omitempty"`
}

type AuthorizeURLResponse struct {
	URL string `json:"url"`
}

type GroupsResponse struct {
	Groups     []entities.Group `json:"groups"`
	SelectedID string           `json:"selected_id"`
}

type ActionResponse struct {
	GroupID string `json:"group_id,omitempty"`
}
