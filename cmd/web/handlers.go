package main

import (
	"net/http"
	"net/url"

	"github.com/go-chi/render"
)

func (app *Application) healthcheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, struct {
		Status  string `json:"status"`
		Debug   bool   `json:"debug"`
		Version string `json:"version"`
	}{
		Status:  "available",
		Debug:   app.cfg.Debug,
		Version: version,
	})
}

func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	app.Http.Redirect(w, r, "/movies")
}

func (app *Application) legacyMovieRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/movies/"+url.PathEscape(app.extractIDParam(r)), http.StatusMovedPermanently)
}
