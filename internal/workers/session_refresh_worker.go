package workers

import (
	"context"
	"time"

	"gestor-pelada/gestor/internal/constants"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/providers"
	"gestor-pelada/gestor/internal/session"
)

// SessionRefresher renews the access token shortly before it expires and
// ends the session once it can no longer be renewed.
type SessionRefresher struct {
	auth     providers.AuthProvider
	sessions *session.Store
	leeway   time.Duration
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewSessionRefresher(auth providers.AuthProvider, sessions *session.Store, leeway time.Duration, metricsReg *metrics.MetricsRegistry) *SessionRefresher {
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	return &SessionRefresher{
		auth:     auth,
		sessions: sessions,
		leeway:   leeway,
		metrics:  metricsReg,
		now:      time.Now,
	}
}

// Start checks the session every interval until ctx is cancelled.
func (w *SessionRefresher) Start(ctx context.Context, interval time.Duration) {
	logging.Info("Session refresher started", "interval", interval.String(), "leeway", w.leeway.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.checkSession(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info("Session refresher shutting down")
			return
		case <-ticker.C:
			w.checkSession(ctx)
		}
	}
}

// checkSession refreshes the current session if it expires within the
// leeway. Transient failures are retried on the next tick while the token is
// still valid; anything else signs the user out.
func (w *SessionRefresher) checkSession(ctx context.Context) {
	current, ok := w.sessions.Current()
	if !ok {
		return
	}
	now := w.now()
	if !current.ExpiresWithin(now, w.leeway) {
		return
	}

	if current.RefreshToken == "" {
		if current.Expired(now) {
			w.metrics.SessionRefreshTotal.WithLabelValues("expired").Inc()
			logging.Warn("Session expired without refresh token", "user_id", current.UserID)
			w.sessions.Clear(ctx)
		}
		return
	}

	fresh, err := w.auth.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		transient := providers.IsCode(err, constants.ErrCodeNetworkError) || providers.IsCode(err, constants.ErrCodeRateLimited)
		if transient && !current.Expired(now) {
			w.metrics.SessionRefreshTotal.WithLabelValues("retry").Inc()
			logging.Warn("Session refresh failed, will retry", "user_id", current.UserID, "error", err.Error())
			return
		}
		w.metrics.SessionRefreshTotal.WithLabelValues("failed").Inc()
		logging.Warn("Session refresh failed, signing out", "user_id", current.UserID, "error", err.Error())
		w.sessions.Clear(ctx)
		return
	}

	w.metrics.SessionRefreshTotal.WithLabelValues("ok").Inc()
	logging.Debug("Session refreshed", "user_id", fresh.UserID, "expires_at", fresh.ExpiresAt)
	w.sessions.Set(ctx, *fresh, constants.SessionTokenRefreshed)
}
