package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/dashboard"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/selection"
	"gestor-pelada/gestor/internal/session"
)

var (
	ErrBusy              = errors.New(constants.MsgBusy)
	ErrNotAuthenticated  = errors.New(constants.MsgNotAuthenticated)
	ErrGroupNameRequired = errors.New(constants.MsgGroupNameRequired)
	ErrGroupIDRequired   = errors.New(constants.MsgGroupIDRequired)
	ErrAlreadyMember     = errors.New(constants.MsgAlreadyMember)
	ErrGroupNotFound     = errors.New(constants.MsgGroupNotFound)
	ErrNoGroupSelected   = errors.New(constants.MsgNoGroupSelected)
	ErrEventDateRequired = errors.New(constants.MsgEventDateRequired)
	ErrNoActiveEvent     = errors.New(constants.MsgNoActiveEvent)
	ErrEventNotOpen      = errors.New(constants.MsgEventNotOpen)
	ErrNoConfirmation    = errors.New(constants.MsgNoConfirmation)
	ErrAdminOnly         = errors.New(constants.MsgAdminOnly)
	ErrTargetRequired    = errors.New(constants.MsgTargetRequired)
	ErrInvalidStatus     = errors.New(constants.MsgInvalidStatus)
	ErrInvalidMembership = errors.New(constants.MsgInvalidMembership)
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeBusy     = "busy"
	outcomeFailed   = "failed"
)

// Result is what a successful action reports back to the user.
type Result struct {
	Notice  string `json:"notice"`
	GroupID string `json:"group_id,omitempty"`
}

// ActionGateway performs the dashboard mutations. Each one validates
// locally, makes its remote call and then re-reads the dashboard, whether
// the call succeeded or not. One mutation runs at a time and none while the
// dashboard is loading.
type ActionGateway struct {
	data      providers.DataProvider
	sessions  *session.Store
	selection *selection.Store
	dashboard *dashboard.Orchestrator
	accounts  *AccountService
	gate      *common.BusyGate
	metrics   *metrics.MetricsRegistry
}

func NewActionGateway(
	data providers.DataProvider,
	sessions *session.Store,
	sel *selection.Store,
	dash *dashboard.Orchestrator,
	accounts *AccountService,
	gate *common.BusyGate,
	metricsReg *metrics.MetricsRegistry,
) *ActionGateway {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &ActionGateway{
		data:      data,
		sessions:  sessions,
		selection: sel,
		dashboard: dash,
		accounts:  accounts,
		gate:      gate,
		metrics:   metricsReg,
	}
}

// Notice turns any gateway error into the single message shown to the user.
func Notice(err error) string {
	return providers.UserMessage(err)
}

// mutate runs call under the busy gate and refreshes the dashboard after it.
func (g *ActionGateway) mutate(ctx context.Context, action string, call func(ctx context.Context) error) error {
	if !g.gate.TryBeginMutation() {
		g.metrics.ActionsTotal.WithLabelValues(action, outcomeBusy).Inc()
		return ErrBusy
	}
	defer g.gate.EndMutation()

	err := call(ctx)
	g.refresh(ctx, action)

	if err != nil {
		g.metrics.ActionsTotal.WithLabelValues(action, outcomeFailed).Inc()
		logging.Warn("Action failed", "action", action, "user_id", g.sessions.UserID(), "error", err.Error())
		return err
	}
	g.metrics.ActionsTotal.WithLabelValues(action, outcomeOK).Inc()
	logging.Info("Action completed", "action", action, "user_id", g.sessions.UserID())
	return nil
}

func (g *ActionGateway) refresh(ctx context.Context, action string) {
	if g.dashboard.GroupID() == "" {
		return
	}
	if _, err := g.dashboard.Refresh(ctx); err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
		logging.Warn("Dashboard refresh after action failed", "action", action, "error", err.Error())
	}
}

func (g *ActionGateway) reject(action string, err error) error {
	g.metrics.ActionsTotal.WithLabelValues(action, outcomeRejected).Inc()
	return err
}

// CreateGroup creates a group administered by the caller, joins it as a
// recurring member and selects it.
func (g *ActionGateway) CreateGroup(ctx context.Context, name string, maxPlayers int) (Result, error) {
	const action = "create_group"
	userID := g.sessions.UserID()
	if userID == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, g.reject(action, ErrGroupNameRequired)
	}
	if maxPlayers <= 0 {
		maxPlayers = constants.DefaultMaxPlayers
	}

	var groupID string
	err := g.mutate(ctx, action, func(ctx context.Context) error {
		group, err := g.data.CreateGroup(ctx, name, maxPlayers, userID)
		if err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		groupID = group.ID
		if err := g.data.CreateMembership(ctx, group.ID, userID, constants.MembershipRecurring); err != nil {
			return fmt.Errorf("join created group: %w", err)
		}
		return g.selectGroup(ctx, group.ID)
	})
	if err != nil {
		return Result{GroupID: groupID}, err
	}
	return Result{Notice: constants.MsgGroupCreated, GroupID: groupID}, nil
}

// JoinGroup joins groupID as a casual member and selects it.
func (g *ActionGateway) JoinGroup(ctx context.Context, groupID string) (Result, error) {
	const action = "join_group"
	userID := g.sessions.UserID()
	if userID == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return Result{}, g.reject(action, ErrGroupIDRequired)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.CreateMembership(ctx, groupID, userID, constants.MembershipCasual); err != nil {
			return classifyJoinError(err)
		}
		return g.selectGroup(ctx, groupID)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgGroupJoined, GroupID: groupID}, nil
}

// classifyJoinError maps membership constraint violations to their messages.
// Anything else keeps the backend message.
func classifyJoinError(err error) error {
	switch providers.ClassifyConstraint(err) {
	case providers.ConstraintDuplicate:
		return ErrAlreadyMember
	case providers.ConstraintMissingReference:
		return ErrGroupNotFound
	}
	return fmt.Errorf("join group: %w", err)
}

func (g *ActionGateway) selectGroup(ctx context.Context, groupID string) error {
	if _, _, err := g.accounts.ReloadGroups(ctx); err != nil {
		return err
	}
	return g.selection.Select(ctx, groupID)
}

// CreateEvent opens a new event in groupID, or in the selected group when
// groupID is empty.
func (g *ActionGateway) CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (Result, error) {
	const action = "create_event"
	if g.sessions.UserID() == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	if groupID == "" {
		groupID = g.selection.Current()
	}
	if groupID == "" {
		return Result{}, g.reject(action, ErrNoGroupSelected)
	}
	if scheduledAt.IsZero() {
		return Result{}, g.reject(action, ErrEventDateRequired)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if _, err := g.data.CreateEvent(ctx, groupID, scheduledAt, priorityUntil); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgEventCreated, GroupID: groupID}, nil
}

func (g *ActionGateway) SetEventStatus(ctx context.Context, eventID string, status constants.EventStatus) (Result, error) {
	const action = "set_event_status"
	if g.sessions.UserID() == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	if eventID == "" {
		return Result{}, g.reject(action, ErrNoActiveEvent)
	}
	if !status.Valid() {
		return Result{}, g.reject(action, ErrInvalidStatus)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.UpdateEventStatus(ctx, eventID, status); err != nil {
			return fmt.Errorf("set event status: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgEventStatusUpdated}, nil
}

// ConfirmAttendance asks the backend to admit the caller to eventID, which
// must be the open active event. Admission and waitlist placement happen
// remotely.
func (g *ActionGateway) ConfirmAttendance(ctx context.Context, eventID string) (Result, error) {
	const action = "confirm_attendance"
	if g.sessions.UserID() == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	active := g.dashboard.View().ActiveEvent
	if active == nil || (eventID != "" && active.ID != eventID) {
		return Result{}, g.reject(action, ErrNoActiveEvent)
	}
	if !active.IsOpen() {
		return Result{}, g.reject(action, ErrEventNotOpen)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.ConfirmPresence(ctx, active.ID); err != nil {
			return fmt.Errorf("confirm attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgPresenceConfirmed}, nil
}

// MarkSelfOut sets the caller's existing confirmation for eventID to out.
func (g *ActionGateway) MarkSelfOut(ctx context.Context, eventID string) (Result, error) {
	const action = "mark_self_out"
	userID := g.sessions.UserID()
	if userID == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	view := g.dashboard.View()
	if eventID == "" && view.ActiveEvent != nil {
		eventID = view.ActiveEvent.ID
	}
	mine := view.MyConfirmation
	if mine == nil || mine.EventID != eventID {
		return Result{}, g.reject(action, ErrNoConfirmation)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.UpdateConfirmationStatus(ctx, eventID, userID, constants.ConfirmationOut); err != nil {
			return fmt.Errorf("mark out: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgMarkedOut}, nil
}

func (g *ActionGateway) SetMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) (Result, error) {
	const action = "set_membership_type"
	if g.sessions.UserID() == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	if membershipID == "" {
		return Result{}, g.reject(action, ErrTargetRequired)
	}
	if !membershipType.Valid() {
		return Result{}, g.reject(action, ErrInvalidMembership)
	}

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.UpdateMembershipType(ctx, membershipID, membershipType); err != nil {
			return fmt.Errorf("set membership type: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgMembershipUpdated}, nil
}

// ForceConfirmationStatus overrides a player's confirmation. Only the
// admin of the loaded group may call it, and only for the active event.
func (g *ActionGateway) ForceConfirmationStatus(ctx context.Context, eventID, targetUserID string, status constants.ConfirmationStatus) (Result, error) {
	const action = "force_status"
	if g.sessions.UserID() == "" {
		return Result{}, g.reject(action, ErrNotAuthenticated)
	}
	view := g.dashboard.View()
	if !view.IsAdmin {
		return Result{}, g.reject(action, ErrAdminOnly)
	}
	if targetUserID == "" {
		return Result{}, g.reject(action, ErrTargetRequired)
	}
	if view.ActiveEvent == nil || (eventID != "" && view.ActiveEvent.ID != eventID) {
		return Result{}, g.reject(action, ErrNoActiveEvent)
	}
	if !status.Valid() {
		return Result{}, g.reject(action, ErrInvalidStatus)
	}
	eventID = view.ActiveEvent.ID

	err := g.mutate(ctx, action, func(ctx context.Context) error {
		if err := g.data.AdminForceStatus(ctx, eventID, targetUserID, status); err != nil {
			return fmt.Errorf("force status: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Notice: constants.MsgStatusForced}, nil
}
