package main

import (
	"errors"
	"net/http"

	"streamflix/proj/internal/domain/models"
	"streamflix/proj/internal/lib/validator"
	"streamflix/proj/internal/services/auth"
	"streamflix/proj/internal/views"
)

const (
	msgNetworkError       = "Network error. Please try again."
	msgLoginSuccess       = "Login successful!"
	msgBadCredentials     = "Incorrect credentials. Try Again."
	msgUserNotFound       = "User Not Found. Try Again."
	msgUserDetailsFailed  = "Failed to load user details."
	msgRegisterSuccess    = "Registration successful!"
	msgPasswordTooShort   = "Password must be at least 8 characters"
	msgRegistrationFailed = "Registration failed. Please try again."
)

func (app *Application) loginPage(w http.ResponseWriter, r *http.Request) {
	app.Http.Render(w, r, http.StatusOK, views.PageLogin, app.newTemplateData(r))
}

func (app *Application) renderLogin(w http.ResponseWriter, r *http.Request, status int, fieldErrors map[string]string, notices ...models.Notice) {
	data := app.newTemplateData(r)
	data.FieldErrors = fieldErrors
	data.AddNotices(notices...)
	app.Http.Render(w, r, status, views.PageLogin, data)
}

func (app *Application) login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.login"
	log := app.Http.setupLogPerReq(r).With("op", op)
	var form loginForm
	if _, err := app.decodePostForm(r, &form); err != nil {
		app.Http.BadRequest(w, r, "")
		return
	}
	sess := contextGetSession(r)
	if err := app.sessions.Clear(w, r, sess); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	if errs := validator.ValidateStruct(app.validator, form); errs != nil {
		app.renderLogin(w, r, http.StatusUnprocessableEntity, errs)
		return
	}
	token, err := app.services.Auth.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		var rejected *auth.RejectedError
		switch {
		case errors.Is(err, auth.ErrNetwork):
			app.renderLogin(w, r, http.StatusBadGateway, nil, models.Failure(msgNetworkError))
		case errors.Is(err, auth.ErrCredentialsMismatch):
			app.renderLogin(w, r, http.StatusUnauthorized, nil, models.Failure(msgBadCredentials))
		case errors.As(err, &rejected):
			msg := rejected.Message
			if msg == "" {
				msg = msgUserNotFound
			}
			app.renderLogin(w, r, http.StatusUnauthorized, nil, models.Failure(msg))
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	user, err := app.services.Auth.CurrentUser(r.Context(), token)
	if err != nil {
		log.Warn("user details lookup failed after login", "errMsg", err.Error())
		app.renderLogin(w, r, http.StatusBadGateway, nil,
			models.Success(msgLoginSuccess),
			models.Failure(msgUserDetailsFailed),
		)
		return
	}
	if err := app.sessions.Login(w, r, sess, token, user); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	if err := app.sessions.Flash(w, r, sess, models.Success(msgLoginSuccess)); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Redirect(w, r, "/movies")
}

func (app *Application) registerPage(w http.ResponseWriter, r *http.Request) {
	app.Http.Render(w, r, http.StatusOK, views.PageRegister, app.newTemplateData(r))
}

func (app *Application) renderRegister(w http.ResponseWriter, r *http.Request, status int, form registerForm, fieldErrors map[string]string, notices ...models.Notice) {
	data := app.newTemplateData(r)
	data.Form = registerForm{Email: form.Email}
	data.FieldErrors = fieldErrors
	data.AddNotices(notices...)
	app.Http.Render(w, r, status, views.PageRegister, data)
}

func (app *Application) register(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if _, err := app.decodePostForm(r, &form); err != nil {
		app.Http.BadRequest(w, r, "")
		return
	}
	if errs := validator.ValidateStruct(app.validator, form); errs != nil {
		app.renderRegister(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}
	err := app.services.Auth.Register(r.Context(), form.Email, form.Password)
	if err != nil {
		var rejected *auth.RejectedError
		switch {
		case errors.Is(err, auth.ErrNetwork):
			app.renderRegister(w, r, http.StatusBadGateway, form, nil, models.Failure(msgNetworkError))
		case errors.Is(err, auth.ErrPasswordTooShort):
			app.renderRegister(w, r, http.StatusUnprocessableEntity, form, nil, models.Failure(msgPasswordTooShort))
		case errors.As(err, &rejected):
			msg := rejected.Message
			if msg == "" {
				msg = msgRegistrationFailed
			}
			app.renderRegister(w, r, http.StatusUnprocessableEntity, form, nil, models.Failure(msg))
		default:
			app.Http.ServerError(w, r, err, "")
		}
		return
	}
	if err := app.sessions.Flash(w, r, contextGetSession(r), models.Success(msgRegisterSuccess)); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Redirect(w, r, "/login")
}

func (app *Application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Clear(w, r, contextGetSession(r)); err != nil {
		app.Http.ServerError(w, r, err, "")
		return
	}
	app.Http.Redirect(w, r, "/login")
}
