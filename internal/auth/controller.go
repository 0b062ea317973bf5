package auth

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/session"
)

// Snapshot is what subscribers and the API see of the controller.
type Snapshot struct {
	Phase           Phase
	Mode            Mode
	Email           string
	ResendRemaining int
	Busy            bool
	Notice          string
}

// Controller drives sign-in, sign-up and password recovery. It reacts to
// session store changes and never blocks on the network while holding its lock.
type Controller struct {
	auth        providers.AuthProvider
	sessions    *session.Store
	location    Location
	clock       Clock
	redirectURL string
	metrics     *metrics.MetricsRegistry

	mu        sync.Mutex
	state     State
	listeners map[int]func(Snapshot)
	nextID    int

	cooldownCancel context.CancelFunc
	cooldownDone   chan struct{}

	unsubscribe func()
}

// NewController evaluates the recovery marker in location before anything
// else, then follows sessions. clock and metricsReg may be nil.
func NewController(authProvider providers.AuthProvider, sessions *session.Store, location Location, redirectURL string, clock Clock, metricsReg *metrics.MetricsRegistry) *Controller {
	if clock == nil {
		clock = SystemClock()
	}
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	if location == nil {
		location = NewMemoryLocation("/")
	}

	c := &Controller{
		auth:        authProvider,
		sessions:    sessions,
		location:    location,
		clock:       clock,
		redirectURL: redirectURL,
		metrics:     metricsReg,
		state:       InitialState(HasRecoveryMarker(location.Current())),
		listeners:   make(map[int]func(Snapshot)),
	}
	c.unsubscribe = sessions.Subscribe(c.onSessionChange)
	return c
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Phase:           c.state.Phase,
		Mode:            c.state.Mode,
		Email:           c.state.Email,
		ResendRemaining: ResendRemaining(c.state.MagicSentAt, c.clock.Now()),
		Busy:            c.state.Busy,
		Notice:          c.state.Notice,
	}
}

// ResendRemaining is the number of seconds before another magic link may be sent.
func (c *Controller) ResendRemaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ResendRemaining(c.state.MagicSentAt, c.clock.Now())
}

// Subscribe registers fn for every published snapshot.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// update applies fn to the state and publishes the result.
func (c *Controller) update(fn func(State) State) {
	c.mu.Lock()
	before := c.state.Phase
	c.state = fn(c.state)
	after := c.state.Phase
	if !c.state.signedOut() || c.state.Mode != ModeMagicLink {
		c.stopCooldownLocked()
	}
	c.mu.Unlock()

	if before != after {
		c.metrics.AuthTransitionsTotal.WithLabelValues(string(after)).Inc()
		logging.Info("Auth phase changed", "from", before, "to", after)
	}
	c.publish()
}

func (c *Controller) publish() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// begin marks the controller busy, or fails when another call is running.
func (c *Controller) begin() error {
	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = c.state.WithBusy(true).WithNotice("")
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *Controller) end(notice string) {
	c.update(func(s State) State { return s.WithBusy(false).WithNotice(notice) })
}

// reject records a local validation failure as the notice.
func (c *Controller) reject(err error) error {
	c.update(func(s State) State { return s.WithNotice(err.Error()) })
	return err
}

// fail records a remote failure verbatim and keeps the current phase.
func (c *Controller) fail(op string, err error) error {
	logging.Warn("Auth request failed", "operation", op, "error", err.Error())
	c.end(providers.UserMessage(err))
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Controller) SetMode(mode Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	c.update(func(s State) State { return s.WithMode(mode) })

	c.mu.Lock()
	if c.state.Mode == ModeMagicLink && c.state.signedOut() && ResendRemaining(c.state.MagicSentAt, c.clock.Now()) > 0 {
		c.startCooldownLocked()
	}
	c.mu.Unlock()
	return nil
}

// RequestMagicLink sends a passwordless sign-in email and starts the resend countdown.
func (c *Controller) RequestMagicLink(ctx context.Context, email, displayName string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return c.reject(ErrInvalidEmail)
	}
	if c.ResendRemaining() > 0 {
		return c.reject(ErrResendCooldown)
	}
	if err := c.begin(); err != nil {
		return err
	}

	if err := c.auth.SignInWithOTP(ctx, email, displayName, c.redirectURL); err != nil {
		return c.fail("request magic link", err)
	}

	sentAt := c.clock.Now()
	c.update(func(s State) State { return s.WithBusy(false).MagicLinkSent(email, sentAt) })

	c.mu.Lock()
	if c.state.Phase == PhaseAwaitingMagicLink {
		c.startCooldownLocked()
	}
	c.mu.Unlock()
	return nil
}

// SignInWithPassword reports success through the session change, not the return value.
func (c *Controller) SignInWithPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return c.reject(err)
	}
	if err := c.begin(); err != nil {
		return err
	}

	sess, err := c.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return c.fail("sign in", err)
	}
	c.end("")
	c.sessions.Set(ctx, *sess, constants.SessionSignedIn)
	return nil
}

func (c *Controller) SignUpWithPassword(ctx context.Context, email, password, displayName string) error {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return c.reject(err)
	}
	if strings.TrimSpace(displayName) == "" {
		return c.reject(ErrNameRequired)
	}
	if err := c.begin(); err != nil {
		return err
	}

	sess, err := c.auth.SignUp(ctx, email, password, displayName, c.redirectURL)
	if err != nil {
		return c.fail("sign up", err)
	}
	if sess == nil {
		c.end(constants.MsgAccountCreated)
		return nil
	}
	c.end("")
	c.sessions.Set(ctx, *sess, constants.SessionSignedIn)
	return nil
}

// SignInWithOAuth returns the URL the user must visit. The session arrives
// later through HandleRedirect.
func (c *Controller) SignInWithOAuth(ctx context.Context, provider string) (string, error) {
	authURL, err := c.auth.AuthorizeURL(ctx, provider, c.redirectURL)
	if err != nil {
		c.update(func(s State) State { return s.WithNotice(providers.UserMessage(err)) })
		return "", fmt.Errorf("oauth %s: %w", provider, err)
	}
	return authURL, nil
}

func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return c.reject(ErrInvalidEmail)
	}
	if err := c.begin(); err != nil {
		return err
	}

	if err := c.auth.ResetPasswordForEmail(ctx, email, c.redirectURL); err != nil {
		return c.fail("request password reset", err)
	}
	c.end(constants.MsgResetEmailSent)
	return nil
}

// HandleRedirect completes a magic link, OAuth or recovery redirect.
func (c *Controller) HandleRedirect(ctx context.Context, rawURL string) error {
	redirect, err := url.Parse(rawURL)
	if err != nil {
		return c.reject(ErrInvalidRedirect)
	}
	if err := c.begin(); err != nil {
		return err
	}

	sess, kind, err := c.auth.ExchangeRedirect(ctx, redirect)
	if err != nil {
		return c.fail("handle redirect", err)
	}

	if kind == constants.SessionPasswordRecovery {
		c.location.Replace(recoveryLocation(rawURL))
	} else {
		c.location.Replace(StripRecoveryMarker(rawURL))
	}
	c.end("")
	c.sessions.Set(ctx, *sess, kind)
	return nil
}

// UpdatePassword validates locally before any remote call. On success the
// recovery marker is stripped so a reload does not re-enter recovery.
func (c *Controller) UpdatePassword(ctx context.Context, password, confirm string) error {
	if err := validateNewPassword(password, confirm); err != nil {
		return c.reject(err)
	}
	token := c.sessions.AccessToken()
	if token == "" {
		return c.reject(ErrNotAuthenticated)
	}
	if err := c.begin(); err != nil {
		return err
	}

	if err := c.auth.UpdatePassword(ctx, token, password); err != nil {
		return c.fail("update password", err)
	}

	c.location.Replace(StripRecoveryMarker(c.location.Current()))
	c.update(func(s State) State { return s.WithBusy(false).PasswordUpdated() })
	return nil
}

// CancelRecovery abandons a recovery link without changing the password.
func (c *Controller) CancelRecovery() error {
	if c.Snapshot().Phase != PhasePasswordRecovery {
		return ErrNoRecovery
	}
	_, hasSession := c.sessions.Current()
	c.location.Replace(StripRecoveryMarker(c.location.Current()))
	c.update(func(s State) State { return s.RecoveryCancelled(hasSession) })
	return nil
}

// SignOut always ends the local session; the remote call is best effort.
func (c *Controller) SignOut(ctx context.Context) error {
	if token := c.sessions.AccessToken(); token != "" {
		if err := c.auth.SignOut(ctx, token); err != nil {
			logging.Warn("Remote sign out failed", "error", err.Error())
		}
	}

	c.location.Replace(StripRecoveryMarker(c.location.Current()))
	c.sessions.Clear(ctx)
	c.update(func(s State) State { return s.WithNotice(constants.MsgSignedOut).SignedOut() })
	return nil
}

func (c *Controller) onSessionChange(change session.Change) {
	c.update(func(s State) State {
		return s.SessionChanged(change.Kind, change.Session != nil)
	})
}

func (c *Controller) startCooldownLocked() {
	c.stopCooldownLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cooldownCancel = cancel
	c.cooldownDone = done

	ticker := c.clock.NewTicker(time.Second)
	go c.runCooldown(ctx, ticker, done)
}

func (c *Controller) stopCooldownLocked() {
	if c.cooldownCancel != nil {
		c.cooldownCancel()
		c.cooldownCancel = nil
	}
}

// runCooldown publishes a snapshot every tick until the countdown hits zero.
func (c *Controller) runCooldown(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			remaining := c.ResendRemaining()
			c.publish()
			if remaining == 0 {
				return
			}
		}
	}
}

// Close stops the countdown and detaches from the session store.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopCooldownLocked()
	done := c.cooldownDone
	c.mu.Unlock()

	if done != nil {
		<-done
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}
