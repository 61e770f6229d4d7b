package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"streamflix/proj/internal/config"
	"streamflix/proj/internal/views"
)

type Http struct {
	log   *slog.Logger
	cfg   *config.Config
	views *views.Renderer
}

func processMsg(status int, msg string) string {
	if msg == "" {
		msg = http.StatusText(status)
	}
	return msg
}

func (h *Http) setupLogPerReq(r *http.Request) *slog.Logger {
	return h.log.With(
		"request_id",
		middleware.GetReqID(r.Context()),
		"method",
		r.Method,
		"path",
		r.URL.Path,
	)
}

// Render writes page with status. A template failure turns into a plain 500.
func (h *Http) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *views.TemplateData) {
	if err := h.views.Render(w, status, page, data); err != nil {
		h.setupLogPerReq(r).Error("Error rendering page", "page", page, "errMsg", err.Error())
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Http) Error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.Render(w, r, status, views.PageError, &views.TemplateData{
		Status:  status,
		Message: processMsg(status, msg),
	})
}

func (h *Http) BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, http.StatusBadRequest, msg)
}

func (h *Http) Forbidden(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, http.StatusForbidden, msg)
}

func (h *Http) NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, http.StatusNotFound, msg)
}

func (h *Http) MethodNotAllowed(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, http.StatusMethodNotAllowed, msg)
}

func (h *Http) TooManyRequests(w http.ResponseWriter, r *http.Request, msg string) {
	h.Error(w, r, http.StatusTooManyRequests, msg)
}

func (h *Http) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := http.StatusInternalServerError
	defaultErrMsg := "Sorry! Can't process your request. Please try again later."
	log := h.setupLogPerReq(r)
	if err != nil {
		log.Error(err.Error())
	}
	if msg == "" {
		msg = defaultErrMsg
	}
	if h.cfg.Debug && err != nil {
		msg = fmt.Sprintf("%s\n%s", err.Error(), debug.Stack())
		http.Error(w, msg, status)
		return
	}
	h.Error(w, r, status, msg)
}

// Redirect always answers with 303 so the browser follows with a GET.
func (h *Http) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
