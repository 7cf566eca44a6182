package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexora/account-api/internal/api"
	apiMiddleware "github.com/nexora/account-api/internal/api/middleware"
	"github.com/nexora/account-api/internal/service"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	accountHandler := api.NewAccountHandler(app.accountService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", accountHandler.Login)

		r.Route("/accounts", func(r chi.Router) {
			// Public endpoints
			r.Post("/", accountHandler.Create)
			r.Post("/confirm", accountHandler.Confirm)
			r.Get("/exists/{email}", accountHandler.Exists)

			// Protected endpoints
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				r.Get("/", accountHandler.List)
				r.Get("/{id}", accountHandler.Get)
				r.Put("/{id}", accountHandler.Update)

				// Destructive and privilege-granting operations need the
				// admin role on top of a valid session.
				r.Group(func(r chi.Router) {
					r.Use(apiMiddleware.RequireRole(service.AdminRoleName))

					r.Delete("/{id}", accountHandler.Delete)
					r.Post("/{id}/roles", accountHandler.AddRole)
				})
			})
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
