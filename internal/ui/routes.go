package ui

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all console routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	// Public routes (no auth required).
	r.Get("/login", ui.HandleLogin)
	r.Post("/login", ui.HandleLoginPost)
	r.Get("/register", ui.HandleRegister)
	r.Post("/register", ui.HandleRegisterPost)

	// Protected routes (session required).
	r.Group(func(r chi.Router) {
		r.Use(ui.AuthMiddleware)

		r.Get("/", ui.HandleIndex)
		r.Get("/dashboard", ui.HandleDashboard)
		r.Get("/logout", ui.HandleLogout)

		// Live progress relay for the dashboard.
		r.Get("/events", ui.HandleEvents)

		r.Route("/videos", func(r chi.Router) {
			r.Post("/upload", ui.HandleUploadPost)
			r.Get("/stream/{id}", ui.HandleStream)
		})

		// Admin panel. Deliberately no admin middleware: the view gates
		// itself by redirecting non-admins to the dashboard.
		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", ui.HandleAdminUsers)
			r.Post("/users", ui.HandleAdminCreateUser)
			r.Delete("/users/{id}", ui.HandleAdminDeleteUser)
		})
	})
}
