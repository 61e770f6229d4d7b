package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/domain/filters"
	"streamflix/proj/internal/domain/models"
	"streamflix/proj/internal/lib/validator"
	"streamflix/proj/internal/services/movies"
	"streamflix/proj/internal/views"
)

const (
	msgMoviesLoadFailed   = "Could not load movies."
	msgMovieLoadFailed    = "Could not load movie."
	msgMovieNotFound      = "Movie not found."
	msgMovieAdded         = "Movie added successfully!"
	msgMovieAddFailed     = "Could not add movie."
	msgMovieUpdated       = "Movie updated successfully!"
	msgMovieUpdateFailed  = "Could not update movie."
	msgCommentAddFailed   = "Could not add comment."
	msgMovieModalAddTitle = "Add Movie"
	msgMovieModalEditTitle = "Edit Movie"
)

func addMovieModal(form movieForm) *views.Modal {
	return &views.Modal{
		Title:    msgMovieModalAddTitle,
		Action:   "/movies",
		Submit:   "Add Movie",
		Form:     form,
		CloseURL: "/movies",
	}
}

func editMovieModal(id string, form movieForm, page int) *views.Modal {
	return &views.Modal{
		Title:    msgMovieModalEditTitle,
		Action:   "/movies/" + url.PathEscape(id),
		Submit:   "Save Changes",
		Form:     form,
		CloseURL: fmt.Sprintf("/movies?page=%d", page),
	}
}

// renderMovieList fetches the whole collection and renders the page of it the user
// asked for. The admin variant also opens the modal requested by ?modal=add or
// ?edit={id}, unless the caller passes one.
func (app *Application) renderMovieList(w http.ResponseWriter, r *http.Request, status int, modal *views.Modal, fieldErrors map[string]string, notices ...models.Notice) {
	const op = "handlers.renderMovieList"
	sess := contextGetSession(r)
	data := app.newTemplateData(r)
	data.AddNotices(notices...)
	data.FieldErrors = fieldErrors

	list, err := app.services.Movies.List(r.Context(), sess.Token())
	if err != nil {
		app.Http.setupLogPerReq(r).Error("Error loading movies", "op", op, "errMsg", err.Error())
		data.AddNotices(models.Alert(msgMoviesLoadFailed))
		list = nil
	}

	page, pageSize := views.PageMoviesUser, filters.UserPageSize
	if sess.IsAdmin() {
		page, pageSize = views.PageMoviesAdmin, filters.AdminPageSize
	}
	data.Movies, data.Page = filters.Paginate(list, filters.Filters{Page: readPage(r), PageSize: pageSize})

	if sess.IsAdmin() {
		if modal == nil {
			modal = app.requestedModal(r, list, data)
		}
		data.Modal = modal
	}
	app.Http.Render(w, r, status, page, data)
}

func (app *Application) requestedModal(r *http.Request, list []models.Movie, data *views.TemplateData) *views.Modal {
	q := r.URL.Query()
	if q.Get("modal") == "add" {
		return addMovieModal(movieForm{})
	}
	id := q.Get("edit")
	if id == "" {
		return nil
	}
	for i := range list {
		if list[i].ID == id {
			return editMovieModal(id, movieFormFrom(&list[i]), data.Page.CurrentPage)
		}
	}
	data.AddNotices(models.Failure(msgMovieNotFound))
	return nil
}

func (app *Application) listMovies(w http.ResponseWriter, r *http.Request) {
	app.renderMovieList(w, r, http.StatusOK, nil, nil)
}

// decodeMovieForm returns the posted form and every field error, conversion and
// validation alike.
func (app *Application) decodeMovieForm(r *http.Request) (movieForm, map[string]string, error) {
	var form movieForm
	fieldErrs, err := app.decodePostForm(r, &form)
	if err != nil {
		return form, nil, err
	}
	validationErrs := validator.ValidateStruct(app.validator, form)
	for field := range fieldErrs {
		// year left at zero after a failed conversion, the conversion message wins
		delete(validationErrs, field)
	}
	return form, mergeErrors(fieldErrs, validationErrs), nil
}

func (app *Application) createMovie(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.createMovie"
	form, fieldErrs, err := app.decodeMovieForm(r)
	if err != nil {
		app.Http.BadRequest(w, r, "")
		return
	}
	if len(fieldErrs) > 0 {
		app.renderMovieList(w, r, http.StatusUnprocessableEntity, addMovieModal(form), fieldErrs)
		return
	}
	sess := contextGetSession(r)
	if err := app.services.Movies.Create(r.Context(), sess.Token(), form.Input()); err != nil {
		app.Http.setupLogPerReq(r).Error("Error creating movie", "op", op, "errMsg", err.Error())
		app.renderMovieList(w, r, http.StatusBadGateway, addMovieModal(form), nil, models.Failure(msgMovieAddFailed))
		return
	}
	if err := app.sessions.Flash(w, r, sess, models.Success(msgMovieAdded)); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Redirect(w, r, "/movies")
}

func (app *Application) updateMovie(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.updateMovie"
	id := app.extractIDParam(r)
	form, fieldErrs, err := app.decodeMovieForm(r)
	if err != nil {
		app.Http.BadRequest(w, r, "")
		return
	}
	if len(fieldErrs) > 0 {
		app.renderMovieList(w, r, http.StatusUnprocessableEntity, editMovieModal(id, form, 1), fieldErrs)
		return
	}
	sess := contextGetSession(r)
	if err := app.services.Movies.Update(r.Context(), sess.Token(), id, form.Input()); err != nil {
		app.Http.setupLogPerReq(r).Error("Error updating movie", "op", op, "id", id, "errMsg", err.Error())
		status := http.StatusBadGateway
		if errors.Is(err, movies.ErrMovieNotFound) {
			status = http.StatusNotFound
		}
		app.renderMovieList(w, r, status, editMovieModal(id, form, 1), nil, models.Failure(msgMovieUpdateFailed))
		return
	}
	if err := app.sessions.Flash(w, r, sess, models.Success(msgMovieUpdated)); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Redirect(w, r, "/movies")
}

func (app *Application) showMovie(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.showMovie"
	id := app.extractIDParam(r)
	data := app.newTemplateData(r)
	movie, err := app.services.Movies.Get(r.Context(), contextGetSession(r).Token(), id)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, movies.ErrMovieNotFound):
			status, data.Error = http.StatusNotFound, msgMovieNotFound
		case movieapi.IsNetwork(err):
			data.Error = msgNetworkError
		default:
			data.Error = msgMovieLoadFailed
		}
		app.Http.setupLogPerReq(r).Warn("Error loading movie", "op", op, "id", id, "errMsg", err.Error())
		app.Http.Render(w, r, status, views.PageMovie, data)
		return
	}
	data.Movie = movie
	app.Http.Render(w, r, http.StatusOK, views.PageMovie, data)
}

func (app *Application) addComment(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.addComment"
	id := app.extractIDParam(r)
	back := "/movies/" + url.PathEscape(id)
	var form commentForm
	if _, err := app.decodePostForm(r, &form); err != nil {
		app.Http.BadRequest(w, r, "")
		return
	}
	sess := contextGetSession(r)
	err := app.services.Movies.AddComment(r.Context(), sess.Token(), id, form.Comment)
	switch {
	case err == nil, errors.Is(err, movies.ErrEmptyComment):
	default:
		app.Http.setupLogPerReq(r).Warn("Error adding comment", "op", op, "id", id, "errMsg", err.Error())
		msg := movieapi.MessageOf(err)
		switch {
		case movieapi.IsNetwork(err):
			msg = msgNetworkError
		case errors.Is(err, movies.ErrMovieNotFound):
			msg = msgMovieNotFound
		case msg == "":
			msg = msgCommentAddFailed
		}
		if err := app.sessions.Flash(w, r, sess, models.Alert(msg)); err != nil {
			app.Http.ServerError(w, r, err, "")
			return
		}
	}
	app.Http.Redirect(w, r, back)
}
