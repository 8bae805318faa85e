package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/handlers"
	"github.com/stationops/forecourt/internal/middleware"
	"github.com/stationops/forecourt/internal/models"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	logHandler *handlers.LogHandler,
	alertHandler *handlers.AlertHandler,
	settingsHandler *handlers.SettingsHandler,
	userHandler *handlers.UserHandler,
	stationHandler *handlers.StationHandler,
	eventHandler *handlers.SecurityEventHandler,
	tokenManager *auth.TokenManager,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokenManager))

		// Reachable even when the session carries must_change_password
		r.Post("/auth/change-password", authHandler.ChangePassword)

		// Everything else requires a fresh password
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireFreshPassword())

			r.Post("/logs", logHandler.Create)
			r.Get("/logs", logHandler.List)

			r.Get("/alerts", alertHandler.List)
			r.Post("/alerts/{id}/resolve", alertHandler.Resolve)

			r.Get("/stations", stationHandler.List)

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleAdmin))

				r.Post("/stations", stationHandler.Create)

				r.Get("/admin/settings/security", settingsHandler.GetSecurity)
				r.Put("/admin/settings/security", settingsHandler.UpdateSecurity)
				r.Get("/admin/settings/alerts", settingsHandler.GetAlerts)
				r.Put("/admin/settings/alerts", settingsHandler.UpdateAlerts)

				r.Get("/admin/users", userHandler.List)
				r.Post("/admin/users", userHandler.Create)
				r.Post("/admin/users/{username}/lock", userHandler.Lock)
				r.Post("/admin/users/{username}/unlock", userHandler.Unlock)
				r.Post("/admin/users/{username}/reset-password", userHandler.ResetPassword)

				r.Get("/admin/security-events", eventHandler.List)
			})
		})
	})
}
