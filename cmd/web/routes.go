package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.Http.MethodNotAllowed(w, r, "")
	})
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(app.InstrumentRequests)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(app.RateLimiter)

	router.Get("/healthcheck", app.healthcheck)
	router.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	router.Get("/movie/{id}", app.legacyMovieRedirect)

	router.Group(func(r chi.Router) {
		r.Use(app.LoadSession)
		r.Get("/", app.home)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAnonymousUser)
			r.Get("/login", app.loginPage)
			r.Post("/login", app.login)
			r.Get("/register", app.registerPage)
			r.Post("/register", app.register)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthenticatedUser)
			r.Post("/logout", app.logout)
			r.Get("/movies", app.listMovies)
			r.Get("/movies/{id}", app.showMovie)
			r.Post("/movies/{id}/comments", app.addComment)

			r.Group(func(r chi.Router) {
				r.Use(app.requireAdmin)
				r.Post("/movies", app.createMovie)
				r.Post("/movies/{id}", app.updateMovie)
			})
		})
	})
	return router
}
