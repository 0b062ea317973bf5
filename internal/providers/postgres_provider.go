package providers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/models/entities"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresProvider reads and writes the backend tables directly. Every
// statement runs in a transaction carrying the caller's JWT claims so
// row-level security and auth.uid() behave as they do behind PostgREST.
type PostgresProvider struct {
	db       *sqlx.DB
	tokens   TokenSource
	verifier TokenVerifier
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

var _ DataProvider = (*PostgresProvider)(nil)

func NewPostgresProvider(db *sqlx.DB, tokens TokenSource, verifier TokenVerifier, metricsReg *metrics.MetricsRegistry) *PostgresProvider {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &PostgresProvider{db: db, tokens: tokens, verifier: verifier, metrics: metricsReg, now: time.Now}
}

// GetProviderType returns the provider type identifier
func (p *PostgresProvider) GetProviderType() string {
	return "postgres"
}

type queueRow struct {
	ID        string                       `db:"id"`
	EventoID  string                       `db:"evento_id"`
	UserID    string                       `db:"user_id"`
	Status    constants.ConfirmationStatus `db:"status"`
	OrdemFila *int                         `db:"ordem_fila"`
	Name      *string                      `db:"name"`
	Email     *string                      `db:"email"`
}

type eventRow struct {
	ID            string                `db:"id"`
	PeladaID      string                `db:"pelada_id"`
	DataEvento    time.Time             `db:"data_evento"`
	PrioridadeAte *time.Time            `db:"prioridade_ate"`
	Status        constants.EventStatus `db:"status"`
	CreatedAt     time.Time             `db:"created_at"`
}

type memberRow struct {
	ID        string                   `db:"id"`
	PeladaID  string                   `db:"pelada_id"`
	UserID    string                   `db:"user_id"`
	Tipo      constants.MembershipType `db:"tipo"`
	Ativo     bool                     `db:"ativo"`
	CreatedAt time.Time                `db:"created_at"`
	Name      *string                  `db:"name"`
	Email     *string                  `db:"email"`
}

type groupRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	AdminID    string `db:"admin_id"`
	MaxPlayers *int   `db:"max_players"`
}

// withCaller runs fn in a transaction scoped to the session user.
func (p *PostgresProvider) withCaller(ctx context.Context, operation string, fn func(tx *sqlx.Tx, claims *AccessClaims) error) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		p.metrics.ProviderRequestsTotal.WithLabelValues(operation, outcome).Inc()
		p.metrics.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	token := ""
	if p.tokens != nil {
		token = p.tokens()
	}
	if token == "" {
		return newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}
	claims, err := p.verifier.Verify(ctx, token)
	if err != nil {
		return err
	}

	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return translateSQLError(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if p.db.DriverName() == "postgres" {
		rawClaims, err := json.Marshal(claims.Raw)
		if err != nil {
			return newProviderError(constants.ErrCodeInvalidDataFormat, "", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(constants.SetJWTClaims), string(rawClaims)); err != nil {
			return translateSQLError(err)
		}
	}

	if err = fn(tx, claims); err != nil {
		return translateSQLError(err)
	}
	if err = tx.Commit(); err != nil {
		return translateSQLError(err)
	}
	return nil
}

func (p *PostgresProvider) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	var profile *entities.Profile
	err := p.withCaller(ctx, "get_profile", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var row struct {
			ID    string  `db:"id"`
			Name  *string `db:"name"`
			Email *string `db:"email"`
		}
		if err := tx.GetContext(ctx, &row, tx.Rebind(constants.GetProfileByID), userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		profile = &entities.Profile{UserID: row.ID, Name: derefString(row.Name), Email: derefString(row.Email)}
		return nil
	})
	return profile, err
}

func (p *PostgresProvider) ListGroupsForUser(ctx context.Context, userID string) ([]entities.Group, error) {
	groups := []entities.Group{}
	err := p.withCaller(ctx, "list_groups", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var rows []groupRow
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(constants.ListGroupsForUser), userID, true); err != nil {
			return err
		}
		for _, r := range rows {
			groups = append(groups, entities.Group{ID: r.ID, Name: r.Name, AdminID: r.AdminID, MaxPlayers: r.MaxPlayers})
		}
		return nil
	})
	return groups, err
}

func (p *PostgresProvider) ListEvents(ctx context.Context, groupID string) ([]entities.Event, error) {
	events := []entities.Event{}
	err := p.withCaller(ctx, "list_events", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var rows []eventRow
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(constants.ListEventsByGroup), groupID); err != nil {
			return err
		}
		for _, r := range rows {
			events = append(events, entities.Event{
				ID:            r.ID,
				GroupID:       r.PeladaID,
				ScheduledAt:   r.DataEvento,
				PriorityUntil: r.PrioridadeAte,
				Status:        r.Status,
				CreatedAt:     r.CreatedAt,
			})
		}
		return nil
	})
	return events, err
}

func (p *PostgresProvider) GetConfirmation(ctx context.Context, eventID, userID string) (*entities.Confirmation, error) {
	var confirmation *entities.Confirmation
	err := p.withCaller(ctx, "get_confirmation", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var row queueRow
		if err := tx.GetContext(ctx, &row, tx.Rebind(constants.GetConfirmation), eventID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		c := row.confirmation()
		confirmation = &c
		return nil
	})
	return confirmation, err
}

func (p *PostgresProvider) ListQueue(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
	entries := []entities.QueueEntry{}
	err := p.withCaller(ctx, "list_queue", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var rows []queueRow
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(constants.ListQueueByEvent), eventID); err != nil {
			return err
		}
		for _, r := range rows {
			entries = append(entries, entities.QueueEntry{
				Confirmation: r.confirmation(),
				Name:         derefString(r.Name),
				Email:        derefString(r.Email),
			})
		}
		return nil
	})
	return entries, err
}

func (p *PostgresProvider) ListMembers(ctx context.Context, groupID string) ([]entities.Member, error) {
	members := []entities.Member{}
	err := p.withCaller(ctx, "list_members", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var rows []memberRow
		if err := tx.SelectContext(ctx, &rows, tx.Rebind(constants.ListMembersByGroup), groupID); err != nil {
			return err
		}
		for _, r := range rows {
			members = append(members, entities.Member{
				Membership: entities.Membership{
					ID:        r.ID,
					GroupID:   r.PeladaID,
					UserID:    r.UserID,
					Type:      r.Tipo,
					Active:    r.Ativo,
					CreatedAt: r.CreatedAt,
				},
				Name:  derefString(r.Name),
				Email: derefString(r.Email),
			})
		}
		return nil
	})
	return members, err
}

func (p *PostgresProvider) CreateGroup(ctx context.Context, name string, maxPlayers int, adminID string) (*entities.Group, error) {
	capacity := maxPlayers
	group := &entities.Group{ID: uuid.NewString(), Name: name, AdminID: adminID, MaxPlayers: &capacity}
	err := p.withCaller(ctx, "create_group", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.InsertGroup), group.ID, name, maxPlayers, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (p *PostgresProvider) CreateMembership(ctx context.Context, groupID, userID string, membershipType constants.MembershipType) error {
	return p.withCaller(ctx, "create_membership", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.InsertMembership),
			uuid.NewString(), groupID, userID, membershipType, true, p.now().UTC())
		return err
	})
}

func (p *PostgresProvider) UpdateMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) error {
	return p.withCaller(ctx, "update_membership", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.UpdateMembershipType), membershipType, membershipID)
		return err
	})
}

func (p *PostgresProvider) CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (*entities.Event, error) {
	event := &entities.Event{
		ID:            uuid.NewString(),
		GroupID:       groupID,
		ScheduledAt:   scheduledAt.UTC(),
		PriorityUntil: priorityUntil,
		Status:        constants.EventOpen,
		CreatedAt:     p.now().UTC(),
	}
	err := p.withCaller(ctx, "create_event", func(tx *sqlx.Tx, _ *AccessClaims) error {
		var priority interface{}
		if priorityUntil != nil {
			priority = priorityUntil.UTC()
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.InsertEvent),
			event.ID, groupID, event.ScheduledAt, priority, event.Status, event.CreatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (p *PostgresProvider) UpdateEventStatus(ctx context.Context, eventID string, status constants.EventStatus) error {
	return p.withCaller(ctx, "update_event_status", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.UpdateEventStatus), status, eventID)
		return err
	})
}

func (p *PostgresProvider) UpdateConfirmationStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	return p.withCaller(ctx, "update_confirmation", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.UpdateConfirmationStatus), status, eventID, userID)
		return err
	})
}

func (p *PostgresProvider) ConfirmPresence(ctx context.Context, eventID string) error {
	return p.withCaller(ctx, "rpc_confirm_presence", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.CallConfirmPresence), eventID)
		return err
	})
}

func (p *PostgresProvider) AdminForceStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	return p.withCaller(ctx, "rpc_admin_force_status", func(tx *sqlx.Tx, _ *AccessClaims) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(constants.CallAdminForceStatus), eventID, userID, status)
		return err
	})
}

func (r queueRow) confirmation() entities.Confirmation {
	return entities.Confirmation{
		ID:            r.ID,
		EventID:       r.EventoID,
		UserID:        r.UserID,
		Status:        r.Status,
		QueuePosition: r.OrdemFila,
	}
}

// translateSQLError turns driver errors into ProviderErrors, keeping SQLSTATE.
func translateSQLError(err error) error {
	if err == nil {
		return nil
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		out := &ProviderError{
			Code:     constants.ErrCodeRemoteRejected,
			SQLState: string(pqErr.Code),
			Status:   http.StatusBadRequest,
			Message:  pqErr.Message,
			Details:  pqErr.Detail,
			Hint:     pqErr.Hint,
			Err:      err,
		}
		if out.SQLState == constants.PgInsufficientPriv {
			out.Code = constants.ErrCodePermissionDenied
		}
		return out
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return &ProviderError{Code: constants.ErrCodeRemoteRejected, Message: err.Error(), Err: err}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
