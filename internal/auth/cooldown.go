package auth

import (
	"math"
	"time"

	"gestor-pelada/gestor/internal/constants"
)

// Clock abstracts time for the resend countdown.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type systemClock struct{}

// SystemClock is the wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) NewTicker(d time.Duration) Ticker {
	return &systemTicker{t: time.NewTicker(d)}
}

type systemTicker struct {
	t *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time { return s.t.C }
func (s *systemTicker) Stop()               { s.t.Stop() }

// ResendRemaining is max(0, 30 - whole seconds elapsed since sentAt). A zero
// sentAt means nothing was sent.
func ResendRemaining(sentAt, now time.Time) int {
	if sentAt.IsZero() {
		return 0
	}
	elapsed := int(math.Floor(now.Sub(sentAt).Seconds()))
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := constants.ResendCooldownSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
