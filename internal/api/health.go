package api

import (
	"context"
	"net/http"
	"time"

	"gestor-pelada/gestor/internal/models/entities"
)

// HealthCheck handles GET /healthCheck
func (h *Handlers) HealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus, len(h.app.Checks))
		overallStatus := "ok"
		for name, check := range h.app.Checks {
			status := entities.ServiceStatus{Status: "ok", Details: "reachable"}
			if err := check(ctx); err != nil {
				status = entities.ServiceStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			services[name] = status
		}

		resp := entities.HealthCheckResponse{
			Status:        overallStatus,
			Backend:       h.backend,
			Authenticated: h.app.Sessions.UserID() != "",
			Services:      services,
			UpSince:       h.upSince.UTC(),
			Uptime:        time.Since(h.upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondWithSuccess(w, code, "", &resp)
	}
}
