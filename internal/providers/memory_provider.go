package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/models/entities"

	"github.com/google/uuid"
)

// MemoryMail is an auth email the in-memory backend "sent".
type MemoryMail struct {
	To     string
	Kind   string
	Link   string
	SentAt time.Time
}

type memoryUser struct {
	ID       string
	Email    string
	Name     string
	Password string
}

// MemoryProvider is a self-contained backend: auth, tables and both
// procedures. It serves the demo mode and tests.
type MemoryProvider struct {
	Tokens TokenSource

	mu       sync.Mutex
	secret   []byte
	tokenTTL time.Duration
	verifier *HMACTokenVerifier
	now      func() time.Time

	// RequireEmailConfirmation makes SignUp return no session, like a
	// project with "confirm email" enabled.
	RequireEmailConfirmation bool

	users         map[string]*memoryUser
	usersByEmail  map[string]string
	refreshTokens map[string]string

	groups        []*entities.Group
	memberships   []*entities.Membership
	events        []*entities.Event
	confirmations []*entities.Confirmation

	outbox []MemoryMail
}

var (
	_ AuthProvider = (*MemoryProvider)(nil)
	_ DataProvider = (*MemoryProvider)(nil)
)

func NewMemoryProvider(tokens TokenSource) *MemoryProvider {
	secret := []byte(uuid.NewString() + uuid.NewString())
	return &MemoryProvider{
		Tokens:        tokens,
		secret:        secret,
		tokenTTL:      time.Hour,
		verifier:      NewHMACTokenVerifier(secret),
		now:           time.Now,
		users:         make(map[string]*memoryUser),
		usersByEmail:  make(map[string]string),
		refreshTokens: make(map[string]string),
	}
}

// GetProviderType returns the provider type identifier
func (p *MemoryProvider) GetProviderType() string {
	return "memory"
}

// Verifier checks tokens issued by this backend.
func (p *MemoryProvider) Verifier() TokenVerifier {
	return p.verifier
}

// SetTokenTTL changes the lifetime of tokens issued from now on.
func (p *MemoryProvider) SetTokenTTL(ttl time.Duration) {
	p.mu.Lock()
	p.tokenTTL = ttl
	p.mu.Unlock()
}

// SeedUser registers a confirmed user and returns its id.
func (p *MemoryProvider) SeedUser(email, password, name string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createUserLocked(email, password, name).ID
}

// Outbox returns a copy of every email sent so far.
func (p *MemoryProvider) Outbox() []MemoryMail {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MemoryMail(nil), p.outbox...)
}

// LastMailTo returns the most recent email sent to address.
func (p *MemoryProvider) LastMailTo(address string) (MemoryMail, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.outbox) - 1; i >= 0; i-- {
		if strings.EqualFold(p.outbox[i].To, address) {
			return p.outbox[i], true
		}
	}
	return MemoryMail{}, false
}

// ============================================================================
// Auth
// ============================================================================

func (p *MemoryProvider) SignUp(ctx context.Context, email, password, displayName, redirectTo string) (*entities.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.usersByEmail[normalizeEmail(email)]; exists {
		return nil, &ProviderError{Code: constants.ErrCodeRemoteRejected, Status: http.StatusUnprocessableEntity, Message: "User already registered"}
	}
	if len(password) < 6 {
		return nil, &ProviderError{Code: constants.ErrCodeRemoteRejected, Status: http.StatusUnprocessableEntity, Message: "Password should be at least 6 characters."}
	}

	user := p.createUserLocked(email, password, displayName)
	session, err := p.issueSessionLocked(user)
	if err != nil {
		return nil, err
	}

	if p.RequireEmailConfirmation {
		p.mailLocked(user.Email, "signup", redirectTo, session)
		return nil, nil
	}
	return session, nil
}

func (p *MemoryProvider) SignInWithPassword(ctx context.Context, email, password string) (*entities.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, ok := p.usersByEmail[normalizeEmail(email)]
	if !ok || p.users[id].Password == "" || p.users[id].Password != password {
		return nil, &ProviderError{Code: constants.ErrCodeAuthenticationFailed, Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	}
	return p.issueSessionLocked(p.users[id])
}

func (p *MemoryProvider) SignInWithOTP(ctx context.Context, email, displayName, redirectTo string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, ok := p.usersByEmail[normalizeEmail(email)]
	var user *memoryUser
	if ok {
		user = p.users[id]
	} else {
		user = p.createUserLocked(email, "", displayName)
	}

	session, err := p.issueSessionLocked(user)
	if err != nil {
		return err
	}
	p.mailLocked(user.Email, "magiclink", redirectTo, session)
	return nil
}

func (p *MemoryProvider) AuthorizeURL(ctx context.Context, provider, redirectTo string) (string, error) {
	return "", &ProviderError{
		Code:    constants.ErrCodeRemoteRejected,
		Status:  http.StatusBadRequest,
		Message: "Unsupported provider: provider is not enabled",
	}
}

func (p *MemoryProvider) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, ok := p.usersByEmail[normalizeEmail(email)]
	if !ok {
		// GoTrue answers the same way for unknown addresses.
		return nil
	}
	session, err := p.issueSessionLocked(p.users[id])
	if err != nil {
		return err
	}
	p.mailLocked(p.users[id].Email, "recovery", redirectTo, session)
	return nil
}

func (p *MemoryProvider) UpdatePassword(ctx context.Context, accessToken, password string) error {
	claims, err := p.verifier.Verify(ctx, accessToken)
	if err != nil {
		return err
	}
	if len(password) < 6 {
		return &ProviderError{Code: constants.ErrCodeRemoteRejected, Status: http.StatusUnprocessableEntity, Message: "Password should be at least 6 characters."}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[claims.Subject]
	if !ok {
		return newProviderError(constants.ErrCodeNotFound, "User not found", nil)
	}
	user.Password = password
	return nil
}

func (p *MemoryProvider) ExchangeRedirect(ctx context.Context, redirect *url.URL) (*entities.Session, constants.SessionEvent, error) {
	params := redirectParams(redirect)
	if err := redirectError(params); err != nil {
		return nil, "", err
	}
	if params.Get("access_token") == "" {
		return nil, "", newProviderError(constants.ErrCodeRedirectInvalid, "", nil)
	}

	if _, err := p.verifier.Verify(ctx, params.Get("access_token")); err != nil {
		return nil, "", err
	}
	session, err := sessionFromFragment(params, p.now())
	if err != nil {
		return nil, "", err
	}
	return session, redirectEvent(params), nil
}

func (p *MemoryProvider) RefreshSession(ctx context.Context, refreshToken string) (*entities.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	userID, ok := p.refreshTokens[refreshToken]
	if !ok {
		return nil, &ProviderError{Code: constants.ErrCodeAuthenticationFailed, Status: http.StatusBadRequest, Message: "Invalid Refresh Token: Refresh Token Not Found"}
	}
	delete(p.refreshTokens, refreshToken)
	return p.issueSessionLocked(p.users[userID])
}

func (p *MemoryProvider) SignOut(ctx context.Context, accessToken string) error {
	claims, err := p.verifier.Verify(ctx, accessToken)
	if err != nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for token, userID := range p.refreshTokens {
		if userID == claims.Subject {
			delete(p.refreshTokens, token)
		}
	}
	return nil
}

func (p *MemoryProvider) createUserLocked(email, password, name string) *memoryUser {
	user := &memoryUser{
		ID:       uuid.NewString(),
		Email:    strings.TrimSpace(email),
		Name:     strings.TrimSpace(name),
		Password: password,
	}
	p.users[user.ID] = user
	p.usersByEmail[normalizeEmail(email)] = user.ID
	return user
}

func (p *MemoryProvider) issueSessionLocked(user *memoryUser) (*entities.Session, error) {
	now := p.now()
	access, err := IssueHS256(p.secret, user.ID, user.Email, p.tokenTTL, now)
	if err != nil {
		return nil, newProviderError(constants.ErrCodeAuthenticationFailed, "", err)
	}
	refresh := uuid.NewString()
	p.refreshTokens[refresh] = user.ID

	return &entities.Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		UserID:       user.ID,
		Email:        user.Email,
		ExpiresAt:    now.Add(p.tokenTTL).Truncate(time.Second).UTC(),
	}, nil
}

func (p *MemoryProvider) mailLocked(to, kind, redirectTo string, session *entities.Session) {
	fragment := url.Values{
		"access_token":  {session.AccessToken},
		"refresh_token": {session.RefreshToken},
		"expires_at":    {strconv.FormatInt(session.ExpiresAt.Unix(), 10)},
		"token_type":    {"bearer"},
		"type":          {kind},
	}
	p.outbox = append(p.outbox, MemoryMail{
		To:     to,
		Kind:   kind,
		Link:   redirectTo + "#" + fragment.Encode(),
		SentAt: p.now(),
	})
}

// ============================================================================
// Data
// ============================================================================

// caller resolves the user behind the current session token.
func (p *MemoryProvider) caller(ctx context.Context) (string, error) {
	token := ""
	if p.Tokens != nil {
		token = p.Tokens()
	}
	if token == "" {
		return "", newProviderError(constants.ErrCodeNotAuthenticated, "", nil)
	}
	claims, err := p.verifier.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (p *MemoryProvider) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	user, ok := p.users[userID]
	if !ok {
		return nil, nil
	}
	return &entities.Profile{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

func (p *MemoryProvider) ListGroupsForUser(ctx context.Context, userID string) ([]entities.Group, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	groups := []entities.Group{}
	for _, m := range p.memberships {
		if m.UserID != userID || !m.Active {
			continue
		}
		if g := p.groupLocked(m.GroupID); g != nil {
			groups = append(groups, *g)
		}
	}
	return groups, nil
}

func (p *MemoryProvider) ListEvents(ctx context.Context, groupID string) ([]entities.Event, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	events := []entities.Event{}
	for _, e := range p.events {
		if e.GroupID == groupID {
			events = append(events, *e)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ScheduledAt.Before(events[j].ScheduledAt)
	})
	return events, nil
}

func (p *MemoryProvider) GetConfirmation(ctx context.Context, eventID, userID string) (*entities.Confirmation, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c := p.confirmationLocked(eventID, userID); c != nil {
		out := copyConfirmation(c)
		return &out, nil
	}
	return nil, nil
}

func (p *MemoryProvider) ListQueue(ctx context.Context, eventID string) ([]entities.QueueEntry, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	entries := []entities.QueueEntry{}
	for _, c := range p.confirmations {
		if c.EventID != eventID {
			continue
		}
		entry := entities.QueueEntry{Confirmation: copyConfirmation(c)}
		if user, ok := p.users[c.UserID]; ok {
			entry.Name = user.Name
			entry.Email = user.Email
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (p *MemoryProvider) ListMembers(ctx context.Context, groupID string) ([]entities.Member, error) {
	if _, err := p.caller(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	members := []entities.Member{}
	for _, m := range p.memberships {
		if m.GroupID != groupID {
			continue
		}
		member := entities.Member{Membership: *m}
		if user, ok := p.users[m.UserID]; ok {
			member.Name = user.Name
			member.Email = user.Email
		}
		members = append(members, member)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (p *MemoryProvider) CreateGroup(ctx context.Context, name string, maxPlayers int, adminID string) (*entities.Group, error) {
	callerID, err := p.caller(ctx)
	if err != nil {
		return nil, err
	}
	if adminID != callerID {
		return nil, rlsViolation("peladas")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	capacity := maxPlayers
	group := &entities.Group{ID: uuid.NewString(), Name: name, AdminID: adminID, MaxPlayers: &capacity}
	p.groups = append(p.groups, group)
	out := *group
	return &out, nil
}

func (p *MemoryProvider) CreateMembership(ctx context.Context, groupID, userID string, membershipType constants.MembershipType) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}
	if userID != callerID {
		return rlsViolation("pelada_users")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.groupLocked(groupID) == nil {
		return &ProviderError{
			Code:     constants.ErrCodeRemoteRejected,
			SQLState: constants.PgForeignKeyViolation,
			Status:   http.StatusConflict,
			Message:  `insert or update on table "pelada_users" violates foreign key constraint "pelada_users_pelada_id_fkey"`,
		}
	}
	if p.membershipLocked(groupID, userID) != nil {
		return &ProviderError{
			Code:     constants.ErrCodeRemoteRejected,
			SQLState: constants.PgUniqueViolation,
			Status:   http.StatusConflict,
			Message:  `duplicate key value violates unique constraint "pelada_users_pelada_id_user_id_key"`,
		}
	}

	p.memberships = append(p.memberships, &entities.Membership{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		UserID:    userID,
		Type:      membershipType,
		Active:    true,
		CreatedAt: p.now().UTC(),
	})
	return nil
}

func (p *MemoryProvider) UpdateMembershipType(ctx context.Context, membershipID string, membershipType constants.MembershipType) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.memberships {
		if m.ID != membershipID {
			continue
		}
		if !p.isAdminLocked(m.GroupID, callerID) {
			return rlsViolation("pelada_users")
		}
		m.Type = membershipType
		return nil
	}
	return nil
}

func (p *MemoryProvider) CreateEvent(ctx context.Context, groupID string, scheduledAt time.Time, priorityUntil *time.Time) (*entities.Event, error) {
	callerID, err := p.caller(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.isAdminLocked(groupID, callerID) {
		return nil, rlsViolation("eventos")
	}

	event := &entities.Event{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		ScheduledAt: scheduledAt.UTC(),
		Status:      constants.EventOpen,
		CreatedAt:   p.now().UTC(),
	}
	if priorityUntil != nil {
		t := priorityUntil.UTC()
		event.PriorityUntil = &t
	}
	p.events = append(p.events, event)
	out := *event
	return &out, nil
}

func (p *MemoryProvider) UpdateEventStatus(ctx context.Context, eventID string, status constants.EventStatus) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	event := p.eventLocked(eventID)
	if event == nil {
		return nil
	}
	if !p.isAdminLocked(event.GroupID, callerID) {
		return rlsViolation("eventos")
	}
	event.Status = status
	return nil
}

func (p *MemoryProvider) UpdateConfirmationStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	event := p.eventLocked(eventID)
	if event == nil {
		return nil
	}
	if callerID != userID && !p.isAdminLocked(event.GroupID, callerID) {
		return rlsViolation("confirmacoes")
	}

	c := p.confirmationLocked(eventID, userID)
	if c == nil {
		return nil
	}
	p.setStatusLocked(event, c, status)
	return nil
}

// ConfirmPresence admits the caller: confirmed while seats remain, otherwise
// appended to the waitlist. Casual members are waitlisted until the priority
// window closes.
func (p *MemoryProvider) ConfirmPresence(ctx context.Context, eventID string) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	event := p.eventLocked(eventID)
	if event == nil {
		return raiseException("Evento nao encontrado")
	}
	if !event.IsOpen() {
		return raiseException("Evento fechado para confirmacoes")
	}
	membership := p.membershipLocked(event.GroupID, callerID)
	if membership == nil || !membership.Active {
		return raiseException("Voce nao participa dessa pelada")
	}

	existing := p.confirmationLocked(eventID, callerID)
	if existing != nil && existing.Status != constants.ConfirmationOut {
		return nil
	}

	status := constants.ConfirmationWaitlisted
	inPriorityWindow := event.PriorityUntil != nil && p.now().Before(*event.PriorityUntil)
	if !(inPriorityWindow && membership.Type == constants.MembershipCasual) && p.hasSeatLocked(event) {
		status = constants.ConfirmationConfirmed
	}

	if existing == nil {
		existing = &entities.Confirmation{ID: uuid.NewString(), EventID: eventID, UserID: callerID}
		p.confirmations = append(p.confirmations, existing)
	}
	existing.Status = status
	existing.QueuePosition = nil
	if status == constants.ConfirmationWaitlisted {
		pos := p.lastWaitlistPositionLocked(eventID) + 1
		existing.QueuePosition = &pos
	}
	return nil
}

func (p *MemoryProvider) AdminForceStatus(ctx context.Context, eventID, userID string, status constants.ConfirmationStatus) error {
	callerID, err := p.caller(ctx)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return raiseException("Status invalido")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	event := p.eventLocked(eventID)
	if event == nil {
		return raiseException("Evento nao encontrado")
	}
	if !p.isAdminLocked(event.GroupID, callerID) {
		return raiseException("Apenas o admin pode alterar status")
	}

	c := p.confirmationLocked(eventID, userID)
	if c == nil {
		c = &entities.Confirmation{ID: uuid.NewString(), EventID: eventID, UserID: userID, Status: constants.ConfirmationOut}
		p.confirmations = append(p.confirmations, c)
	}
	p.setStatusLocked(event, c, status)
	return nil
}

// setStatusLocked moves c to status, keeps waitlist positions dense and
// promotes the head of the waitlist when a seat is released.
func (p *MemoryProvider) setStatusLocked(event *entities.Event, c *entities.Confirmation, status constants.ConfirmationStatus) {
	released := c.Status == constants.ConfirmationConfirmed && status != constants.ConfirmationConfirmed

	c.Status = status
	c.QueuePosition = nil
	if status == constants.ConfirmationWaitlisted {
		pos := p.lastWaitlistPositionLocked(event.ID) + 1
		c.QueuePosition = &pos
	}

	if released && p.hasSeatLocked(event) {
		if head := p.waitlistHeadLocked(event.ID, c); head != nil {
			head.Status = constants.ConfirmationConfirmed
			head.QueuePosition = nil
		}
	}
	p.renumberWaitlistLocked(event.ID)
}

func (p *MemoryProvider) hasSeatLocked(event *entities.Event) bool {
	group := p.groupLocked(event.GroupID)
	if group == nil || group.MaxPlayers == nil || *group.MaxPlayers <= 0 {
		return true
	}
	confirmed := 0
	for _, c := range p.confirmations {
		if c.EventID == event.ID && c.Status == constants.ConfirmationConfirmed {
			confirmed++
		}
	}
	return confirmed < *group.MaxPlayers
}

func (p *MemoryProvider) waitlistLocked(eventID string) []*entities.Confirmation {
	var list []*entities.Confirmation
	for _, c := range p.confirmations {
		if c.EventID == eventID && c.Status == constants.ConfirmationWaitlisted {
			list = append(list, c)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return positionOf(list[i]) < positionOf(list[j])
	})
	return list
}

// waitlistHeadLocked returns the first waitlisted confirmation other than skip.
func (p *MemoryProvider) waitlistHeadLocked(eventID string, skip *entities.Confirmation) *entities.Confirmation {
	for _, c := range p.waitlistLocked(eventID) {
		if c != skip {
			return c
		}
	}
	return nil
}

func (p *MemoryProvider) lastWaitlistPositionLocked(eventID string) int {
	last := 0
	for _, c := range p.waitlistLocked(eventID) {
		if c.QueuePosition != nil && *c.QueuePosition > last {
			last = *c.QueuePosition
		}
	}
	return last
}

func (p *MemoryProvider) renumberWaitlistLocked(eventID string) {
	for i, c := range p.waitlistLocked(eventID) {
		pos := i + 1
		c.QueuePosition = &pos
	}
}

func (p *MemoryProvider) groupLocked(id string) *entities.Group {
	for _, g := range p.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (p *MemoryProvider) eventLocked(id string) *entities.Event {
	for _, e := range p.events {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (p *MemoryProvider) membershipLocked(groupID, userID string) *entities.Membership {
	for _, m := range p.memberships {
		if m.GroupID == groupID && m.UserID == userID {
			return m
		}
	}
	return nil
}

func (p *MemoryProvider) confirmationLocked(eventID, userID string) *entities.Confirmation {
	for _, c := range p.confirmations {
		if c.EventID == eventID && c.UserID == userID {
			return c
		}
	}
	return nil
}

func (p *MemoryProvider) isAdminLocked(groupID, userID string) bool {
	g := p.groupLocked(groupID)
	return g != nil && g.IsAdmin(userID)
}

func copyConfirmation(c *entities.Confirmation) entities.Confirmation {
	out := *c
	if c.QueuePosition != nil {
		pos := *c.QueuePosition
		out.QueuePosition = &pos
	}
	return out
}

// positionOf sorts confirmations without a position last.
func positionOf(c *entities.Confirmation) int {
	if c.QueuePosition == nil {
		return int(^uint(0) >> 1)
	}
	return *c.QueuePosition
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func rlsViolation(table string) *ProviderError {
	return &ProviderError{
		Code:     constants.ErrCodePermissionDenied,
		SQLState: constants.PgInsufficientPriv,
		Status:   http.StatusForbidden,
		Message:  fmt.Sprintf("new row violates row-level security policy for table %q", table),
	}
}

func raiseException(message string) *ProviderError {
	return &ProviderError{
		Code:     constants.ErrCodeRemoteRejected,
		SQLState: constants.PgRaiseException,
		Status:   http.StatusBadRequest,
		Message:  message,
	}
}
