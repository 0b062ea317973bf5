package app

import (
	"context"
	"sync"
	"time"

	"gestor-pelada/gestor/internal/auth"
	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/dashboard"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/selection"
	"gestor-pelada/gestor/internal/services"
	"gestor-pelada/gestor/internal/session"
	"gestor-pelada/gestor/internal/workers"
)

// Options are the collaborators of an App. Only Auth and Data are required.
type Options struct {
	Auth        providers.AuthProvider
	Data        providers.DataProvider
	Preferences selection.PreferenceStore
	Persister   session.Persister
	Cache       common.CacheInterface
	Metrics     *metrics.MetricsRegistry

	EntryURL    string
	RedirectURL string
	Clock       auth.Clock

	ProfileCacheTTL time.Duration
	RefreshInterval time.Duration
	RefreshLeeway   time.Duration
}

// HealthCheck probes one external dependency.
type HealthCheck func(ctx context.Context) error

// App wires the session, auth, selection and dashboard components together.
// Session changes load the user's groups; selection changes load the
// dashboard; sign-out clears both.
type App struct {
	Sessions  *session.Store
	Auth      *auth.Controller
	Selection *selection.Store
	Dashboard *dashboard.Orchestrator
	Accounts  *services.AccountService
	Actions   *services.ActionGateway
	Gate      *common.BusyGate
	Location  *auth.MemoryLocation

	// Checks are the dependency probes reported by the health endpoint.
	Checks map[string]HealthCheck

	refresher       *workers.SessionRefresher
	refreshInterval time.Duration
	entryURL        string
	cache           common.CacheInterface

	mu          sync.Mutex
	userID      string
	unsubscribe []func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func New(opts Options) *App {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	if opts.Cache == nil {
		opts.Cache = common.NewCacheService(opts.ProfileCacheTTL, 2*opts.ProfileCacheTTL, opts.Metrics)
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 30 * time.Second
	}
	if opts.RefreshLeeway <= 0 {
		opts.RefreshLeeway = 2 * time.Minute
	}

	a := &App{
		Sessions:        session.NewStore(opts.Persister),
		Selection:       selection.NewStore(opts.Preferences),
		Gate:            common.NewBusyGate(),
		Location:        auth.NewMemoryLocation(opts.EntryURL),
		Checks:          make(map[string]HealthCheck),
		refreshInterval: opts.RefreshInterval,
		entryURL:        opts.EntryURL,
		cache:           opts.Cache,
	}

	// The controller reads the entry URL before any session is restored.
	a.Auth = auth.NewController(opts.Auth, a.Sessions, a.Location, opts.RedirectURL, opts.Clock, opts.Metrics)
	a.Dashboard = dashboard.NewOrchestrator(opts.Data, a.Selection, a.Sessions.UserID, a.Gate, opts.Metrics)
	a.Accounts = services.NewAccountService(opts.Data, a.Sessions, a.Selection, opts.Cache, opts.ProfileCacheTTL)
	a.Actions = services.NewActionGateway(opts.Data, a.Sessions, a.Selection, a.Dashboard, a.Accounts, a.Gate, opts.Metrics)
	a.refresher = workers.NewSessionRefresher(opts.Auth, a.Sessions, opts.RefreshLeeway, opts.Metrics)

	a.unsubscribe = append(a.unsubscribe,
		a.Sessions.Subscribe(a.onSessionChange),
		a.Selection.Subscribe(a.onSelectionChange),
	)
	return a
}

// Start restores a saved session, completes an auth redirect carried by the
// entry URL and starts the token refresher.
func (a *App) Start(ctx context.Context) error {
	restored, err := a.Sessions.Restore(ctx)
	if err != nil {
		logging.Warn("Failed to restore session", "error", err.Error())
	} else if restored {
		logging.Info("Session restored", "user_id", a.Sessions.UserID())
	}

	if auth.HasAuthRedirect(a.entryURL) {
		if err := a.Auth.HandleRedirect(ctx, a.entryURL); err != nil {
			logging.Warn("Failed to complete entry redirect", "error", err.Error())
		} else {
			logging.Info("Entry redirect completed", "user_id", a.Sessions.UserID(), "phase", a.Auth.Snapshot().Phase)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.mu.Lock()
	a.cancel = cancel
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.refresher.Start(runCtx, a.refreshInterval)
	}()
	return nil
}

// Close stops background work and detaches every listener.
func (a *App) Close() {
	a.mu.Lock()
	cancel := a.cancel
	unsubscribe := a.unsubscribe
	a.unsubscribe = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	a.wg.Wait()
	a.Auth.Close()
	for _, fn := range unsubscribe {
		fn()
	}
	if err := a.cache.Close(); err != nil {
		logging.Warn("Failed to close cache", "error", err.Error())
	}
}

func (a *App) onSessionChange(change session.Change) {
	ctx := context.Background()

	if change.Kind == constants.SessionSignedOut || change.Session == nil {
		a.mu.Lock()
		previous := a.userID
		a.userID = ""
		a.mu.Unlock()

		a.Accounts.Forget(previous)
		a.Selection.Clear()
		a.Dashboard.Reset()
		logging.Info("Signed out", "user_id", previous)
		return
	}

	a.mu.Lock()
	sameUser := a.userID == change.Session.UserID
	a.userID = change.Session.UserID
	a.mu.Unlock()

	// Token refreshes of the same user keep everything loaded.
	if sameUser && change.Kind != constants.SessionSignedIn {
		return
	}

	if _, err := a.Accounts.LoadProfile(ctx); err != nil {
		logging.Warn("Failed to load profile", "user_id", change.Session.UserID, "error", err.Error())
	}
	if _, _, err := a.Accounts.ReloadGroups(ctx); err != nil {
		logging.Warn("Failed to load groups", "user_id", change.Session.UserID, "error", err.Error())
	}
}

// maxSelectionCatchUp bounds the reloads one selection change may issue to
// bring the view back to the selected group.
const maxSelectionCatchUp = 5

func (a *App) onSelectionChange(groupID string) {
	a.loadSelection(groupID)

	// Concurrent selections may reach this listener in another order than
	// they were written, so the view is checked against the store after the
	// load and reloaded until both agree.
	for i := 0; i < maxSelectionCatchUp; i++ {
		current := a.Selection.Current()
		if a.Dashboard.View().GroupID == current {
			return
		}
		logging.Debug("Dashboard behind selection, reloading", "view_group_id", a.Dashboard.View().GroupID, "group_id", current)
		a.loadSelection(current)
	}
	logging.Warn("Dashboard did not settle on the selected group", "group_id", a.Selection.Current())
}

func (a *App) loadSelection(groupID string) {
	if groupID == "" {
		a.Dashboard.Reset()
		return
	}
	if _, err := a.Dashboard.LoadForGroup(context.Background(), groupID); err != nil {
		logging.Debug("Dashboard load ended with error", "group_id", groupID, "error", err.Error())
	}
}
