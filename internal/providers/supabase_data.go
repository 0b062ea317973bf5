package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/dtos"
	"gestor-pelada/gestor/internal/models/entities"
)

const (
	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"
)

func (p *SupabaseProvider) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{"select": {"id,name,email"}, "id": {eq(userID)}, "limit": {"1"}}
	var rows []dtos.UserRow
	if _, err := p.do(ctx, "get_profile", http.MethodGet, "/rest/v1/users", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	profile := rows[0].ToProfile()
	return &profile, nil
}

func (p *SupabaseProvider) ListGroupsForUser(ctx context.Context, userID string) ([]entities.Group, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":  {"id,tipo,ativo,peladas(id,name,admin_id,max_players)"},
		"user_id": {eq(userID)},
		"ativo":   {"eq.true"},
	}
	var rows []dtos.MembershipGroupRow
	if _, err := p.do(ctx, "list_groups", http.MethodGet, "/rest/v1/pelada_users", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}

	groups := make([]entities.Group, 0, len(rows))
	for _, row := range rows {
		if row.Pelada != nil {
			groups = append(groups, row.Pelada.ToEntity())
		}
	}
	return groups, nil
}

func (p *SupabaseProvider) ListEvents(ctx context.Context, groupID string) ([]entities.Event, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{"select": {"*"}, "pelada_id": {eq(groupID)}, "order": {"data_evento.asc"}}
	var rows []dtos.EventRow
	if _, err := p.do(ctx, "list_events", http.MethodGet, "/rest/v1/eventos", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}

	events := make([]entities.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.ToEntity())
	}
	return events, nil
}

func (p *SupabaseProvider) GetConfirmation(ctx context.Context, eventID, userID string) (*entities.Confirmation, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{"select": {"*"}, "evento_id": {eq(eventID)}, "user_id": {eq(userID)}, "limit": {"1"}}
	var rows []dtos.ConfirmationRow
	if _, err := p.do(ctx, "get_confirmation", http.MethodGet, "/rest/v1/confirmacoes", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	confirmation := rows[0].ToEntity()
	return &confirmation, nil
}

func (p *SupabaseProvider) ListQueue(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":    {"id,evento_id,user_id,status,ordem_fila,users(name,email)"},
		"evento_id": {eq(eventID)},
		"order":     {"status.asc,ordem_fila.asc.nullslast"},
	}
	var rows []dtos.ConfirmationRow
	if _, err := p.do(ctx, "list_queue", http.MethodGet, "/rest/v1/confirmacoes", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}

	entries := make([]entities.QueueEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.ToQueueEntry())
	}
	return entries, nil
}

func (p *SupabaseProvider) ListMembers(ctx context.Context, groupID string) ([]entities.Member, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"select":    {"id,pelada_id,user_id,tipo,ativo,created_at,users(id,name,email)"},
		"pelada_id": {eq(groupID)},
		"order":     {"created_at.asc"},
	}
	var rows []dtos.MemberRow
	if _, err := p.do(ctx, "list_members", http.MethodGet, "/rest/v1/pelada_users", query, nil, &rows, withBearer(token)); err != nil {
		return nil, err
	}

	members := make([]entities.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.ToEntity())
	}
	return members, nil
}

func (p *SupabaseProvider) CreateGroup(ctx context.Context, name string, maxPlayers int, adminID string) (*entities.Group, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	var rows []dtos.GroupRow
	payload := dtos.GroupInsert{Name: name, MaxPlayers: maxPlayers, AdminID: adminID}
	if _, err := p.do(ctx, "create_group", http.MethodPost, "/rest/v1/peladas", nil, payload, &rows, withBearer(token), withPrefer(preferRepresentation)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, newProviderError(constants.ErrCodeInvalidDataFormat, "backend returned no group", nil)
	}
	group := rows[0].ToEntity()
	return &group, nil
}

func (p *SupabaseProvider) CreateMembership(ctx context.Context, groupID, userID string, membershipType constants.MembershipType) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	payload := dtos.MembershipInsert{PeladaID: groupID, UserID: userID, Tipo: membershipType, Ativo: true}
	_, err = p.do(ctx, "create_membership", http.MethodPost, "/rest/v1/pelada_users", nil, payload, nil, withBearer(token), withPrefer(preferMinimal))
	return err
}

func (p *SupabaseProvider) UpdateMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	query := url.Values{"id": {eq(membershipID)}}
	_, err = p.do(ctx, "update_membership", http.MethodPatch, "/rest/v1/pelada_users", query, map[string]string{"tipo": string(membershipType)}, nil, withBearer(token), withPrefer(preferMinimal))
	return err
}

func (p *SupabaseProvider) CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (*entities.Event, error) {
	token, err := p.requireSession()
	if err != nil {
		return nil, err
	}

	payload := dtos.EventInsert{
		PeladaID:   groupID,
		DataEvento: dtos.Timestamp{Time: scheduledAt},
		Status:     constants.EventOpen,
	}
	if priorityUntil != nil {
		payload.PrioridadeAte = dtos.Timestamp{Time: *priorityUntil}
	}

	var rows []dtos.EventRow
	if _, err := p.do(ctx, "create_event", http.MethodPost, "/rest/v1/eventos", nil, payload, &rows, withBearer(token), withPrefer(preferRepresentation)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, newProviderError(constants.ErrCodeInvalidDataFormat, "backend returned no event", nil)
	}
	event := rows[0].ToEntity()
	return &event, nil
}

func (p *SupabaseProvider) UpdateEventStatus(ctx context.Context, eventID string, status constants.EventStatus) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	query := url.Values{"id": {eq(eventID)}}
	_, err = p.do(ctx, "update_event_status", http.MethodPatch, "/rest/v1/eventos", query, map[string]string{"status": string(status)}, nil, withBearer(token), withPrefer(preferMinimal))
	return err
}

func (p *SupabaseProvider) UpdateConfirmationStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	query := url.Values{"evento_id": {eq(eventID)}, "user_id": {eq(userID)}}
	_, err = p.do(ctx, "update_confirmation", http.MethodPatch, "/rest/v1/confirmacoes", query, map[string]string{"status": string(status)}, nil, withBearer(token), withPrefer(preferMinimal))
	return err
}

func (p *SupabaseProvider) ConfirmPresence(ctx context.Context, eventID string) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	_, err = p.do(ctx, "rpc_confirm_presence", http.MethodPost, "/rest/v1/rpc/confirm_presence", nil, dtos.ConfirmPresenceArgs{EventoID: eventID}, nil, withBearer(token))
	return err
}

func (p *SupabaseProvider) AdminForceStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	token, err := p.requireSession()
	if err != nil {
		return err
	}

	args := dtos.AdminForceStatusArgs{EventoID: eventID, UserID: userID, Status: status}
	_, err = p.do(ctx, "rpc_admin_force_status", http.MethodPost, "/rest/v1/rpc/admin_force_status", nil, args, nil, withBearer(token))
	return err
}
