package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-srs/internal/api"
	apimw "github.com/phrazzld/scry-srs/internal/api/middleware"
	"github.com/phrazzld/scry-srs/internal/api/shared"
)

// setupRouter builds the HTTP routes. Everything under /api requires a
// bearer token.
func (app *application) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.NewTraceMiddleware(app.logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := app.db.PingContext(r.Context()); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
		shared.RespondWithData(w, r, http.StatusOK, "OK", nil)
	})

	authMiddleware := apimw.NewAuthMiddleware(app.jwtService)
	itemHandler := api.NewItemHandler(app.reviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		itemHandler.RegisterRoutes(r)
	})

	return r
}
