package providers

import (
	"context"
	"net/url"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"
)

// TokenSource returns the bearer token of the current session, or "" when signed out.
type TokenSource func() string

// AuthProvider is the remote identity service (Supabase Auth / GoTrue).
type AuthProvider interface {
	// SignUp returns a nil session when the backend requires email confirmation first.
	SignUp(ctx context.Context, email, password, displayName, redirectTo string) (*entities.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*entities.Session, error)
	SignInWithOTP(ctx context.Context, email, displayName, redirectTo string) error
	AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error)
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, accessToken, password string) error
	// ExchangeRedirect turns a magic link, OAuth or recovery redirect into a session.
	// The returned event is SessionPasswordRecovery for recovery links.
	ExchangeRedirect(ctx context.Context, redirect *url.URL) (*entities.Session, constants.SessionEvent, error)
	RefreshSession(ctx context.Context, refreshToken string) (*entities.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// DataProvider is the remote table and procedure surface. Calls run as the
// user owning the current session token.
type DataProvider interface {
	// GetProfile returns nil when the user has no profile row yet.
	GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]entities.Group, error)
	ListEvents(ctx context.Context, groupID string) ([]entities.Event, error)
	// GetConfirmation returns nil when the user has not confirmed for the event.
	GetConfirmation(ctx context.Context, eventID, userID string) (*entities.Confirmation, error)
	ListQueue(ctx context.Context, eventID string) ([]entities.QueueEntry, error)
	ListMembers(ctx context.Context, groupID string) ([]entities.Member, error)

	CreateGroup(ctx context.Context, name string, maxPlayers int, adminID string) (*entities.Group, error)
	CreateMembership(ctx context.Context, groupID, userID string, membershipType constants.MembershipType) error
	UpdateMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) error
	CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (*entities.Event, error)
	UpdateEventStatus(ctx context.Context, eventID string, status constants.EventStatus) error
	UpdateConfirmationStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error

	// ConfirmPresence invokes the remote admission procedure; capacity and
	// waitlist placement are decided remotely.
	ConfirmPresence(ctx context.Context, eventID string) error
	AdminForceStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error
}
