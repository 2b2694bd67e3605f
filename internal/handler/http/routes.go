package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MKhiriev/go-login-portal/internal/store"
	"github.com/MKhiriev/go-login-portal/models"
)

// corsMaxAge is how long browsers may cache a preflight answer, in seconds.
const corsMaxAge = 300

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging)
	router.Use(withSecurityHeaders)
	router.Use(middleware.Compress(5, "application/json"))

	if len(h.corsOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.corsOrigins,
			AllowedMethods:   []string{"GET", "POST"},
			AllowedHeaders:   []string{"Content-Type", traceIDHeader},
			ExposedHeaders:   []string{traceIDHeader},
			AllowCredentials: true,
			MaxAge:           corsMaxAge,
		}))
	}

	// service routes
	router.Get("/health", h.health)
	router.Get("/version", h.getServerVersion)
	if h.avatars != nil {
		router.Get(store.AvatarURLPrefix+"*", h.avatars.ServeHTTP)
	}

	router.Group(func(r chi.Router) {
		r.Use(h.withSession, h.withClientInfo, h.withIdentity)

		r.Get("/", h.landing)
		r.Get("/captcha/{scope}/refresh", h.refreshCaptcha)

		// anonymous-only pages
		r.Group(func(r chi.Router) {
			r.Use(h.redirectAuthenticated)

			r.Get("/register", h.registerPage)
			r.Get("/login", h.loginPage)
			r.With(h.withRateLimit).Post("/register", h.register)
			r.With(h.withRateLimit).Post("/login", h.login)
		})

		// signed-in pages
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuthenticated)

			r.Post("/logout", h.logout)
			r.Get("/home", h.home)
			r.Get("/dashboard", h.dashboardRedirect)
			r.Get("/directory", h.directory)
			r.Get("/profile", h.profile)
			r.Post("/profile/details", h.updateProfileDetails)
			r.Post("/profile/password", h.updateProfilePassword)
			r.Post("/profile/avatar", h.updateProfileAvatar)
			r.Post("/profile/avatar/remove", h.removeProfileAvatar)
		})

		// admin panel
		r.Group(func(r chi.Router) {
			r.Use(h.requireRole(models.RoleAdmin))

			r.Get("/admin/dashboard", h.adminDashboard)
			r.Get("/admin/users/add", h.addUsersPage)
			r.Post("/admin/users/add", h.addUser)
			r.Post("/admin/users/{id}/role", h.updateRole)
			r.Post("/admin/users/{id}/status", h.updateStatus)
			r.Post("/admin/users/{id}/unlock", h.unlockUser)
			r.Post("/admin/users/{id}/delete", h.deleteUser)
			r.Get("/admin/audit", h.auditLog)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
