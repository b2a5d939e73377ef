package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/prepdeck/prepdeck-api/internal/api"
	apimiddleware "github.com/prepdeck/prepdeck-api/internal/api/middleware"
)

// setupRouter builds the route tree. All /api routes require a bearer token
// from the external identity service; the admin subtree also requires the
// admin role.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authMiddleware := apimiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret)
	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	profileHandler := api.NewProfileHandler(app.profileService, app.logger)
	adminHandler := api.NewAdminHandler(app.draftService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/cards/due", studyHandler.GetDueCards)
		r.Post("/cards/{id}/review", studyHandler.SubmitReview)
		r.Get("/study/stats", studyHandler.GetStudyStats)
		r.Put("/study/goal", studyHandler.UpdateDailyGoal)
		r.Get("/profile", profileHandler.GetProfile)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)
			r.Post("/admin/cards/generate", adminHandler.GenerateCards)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
