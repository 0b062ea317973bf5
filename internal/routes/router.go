package routes

import (
	"net/http"

	"gestor-pelada/gestor/internal/api"
	"gestor-pelada/gestor/internal/config"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/middleware"
	"gestor-pelada/gestor/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RegisterRoutes builds the local HTTP surface of the client.
func RegisterRoutes(cfg *config.Config, handlers *api.Handlers, sessions *session.Store, metricsReg *metrics.MetricsRegistry) http.Handler {
	r := chi.NewRouter()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(metricsReg))
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(limiter.Middleware)

	r.Get("/healthCheck", handlers.HealthCheck())
	r.Get("/auth/callback", handlers.AuthCallback())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(middleware.InFlightMiddleware(metricsReg, "/api/v1"))

		v1.Route("/auth", func(a chi.Router) {
			a.Get("/", handlers.GetAuthState())
			a.Post("/mode", handlers.SetMode())
			a.Post("/magic-link", handlers.RequestMagicLink())
			a.Post("/sign-in", handlers.SignIn())
			a.Post("/sign-up", handlers.SignUp())
			a.Get("/oauth/{provider}", handlers.OAuthURL())
			a.Post("/password-reset", handlers.RequestPasswordReset())
			a.Post("/redirect", handlers.CompleteRedirect())
			a.Post("/password", handlers.UpdatePassword())
			a.Post("/recovery/cancel", handlers.CancelRecovery())
			a.Post("/sign-out", handlers.SignOut())
		})

		// Everything below needs a signed-in user
		v1.Group(func(member chi.Router) {
			member.Use(middleware.RequireSession(sessions))

			member.Get("/groups", handlers.ListGroups())
			member.Post("/groups", handlers.CreateGroup())
			member.Post("/groups/reload", handlers.ReloadGroups())
			member.Post("/groups/join", handlers.JoinGroup())
			member.Put("/groups/selected", handlers.SelectGroup())

			member.Get("/dashboard", handlers.GetDashboard())
			member.Post("/dashboard/refresh", handlers.RefreshDashboard())

			member.Post("/events", handlers.CreateEvent())
			member.Put("/events/{eventID}/status", handlers.SetEventStatus())
			member.Post("/events/{eventID}/confirm", handlers.ConfirmAttendance())
			member.Post("/events/{eventID}/out", handlers.MarkSelfOut())
			member.Put("/events/{eventID}/confirmations", handlers.ForceConfirmationStatus())

			member.Put("/memberships/{membershipID}", handlers.SetMembershipType())
		})
	})

	logging.Info("Router initialized", "allowed_origins", cfg.AllowedOrigins)
	return r
}
