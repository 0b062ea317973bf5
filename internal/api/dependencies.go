package api

import (
	"time"

	"gestor-pelada/gestor/internal/app"
)

// Handlers exposes one client App over HTTP.
type Handlers struct {
	app     *app.App
	backend string
	baseURL string
	upSince time.Time
}

// NewHandlers creates the handlers for a. baseURL is the public origin used
// to rebuild the auth callback URL.
func NewHandlers(a *app.App, backend, baseURL string, upSince time.Time) *Handlers {
	return &Handlers{
		app:     a,
		backend: backend,
		baseURL: baseURL,
		upSince: upSince,
	}
}
