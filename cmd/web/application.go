package main

import (
	"log/slog"
	"net/http"
	"sync"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"streamflix/proj/internal/clients/movieapi"
	"streamflix/proj/internal/config"
	"streamflix/proj/internal/lib/validator"
	"streamflix/proj/internal/metrics"
	"streamflix/proj/internal/services"
	"streamflix/proj/internal/session"
	"streamflix/proj/internal/views"
)

type Application struct {
	cfg         *config.Config
	log         *slog.Logger
	Http        *Http
	services    *services.Services
	sessions    *session.Manager
	validator   *govalidator.Validate
	formDecoder *schema.Decoder
	metrics     *metrics.Metrics

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewApplication(cfg *config.Config, log *slog.Logger, store session.Store) *Application {
	m := metrics.New()
	api := movieapi.New(log, cfg.API.BaseURL, &http.Client{
		Timeout:   cfg.API.Timeout,
		Transport: m.InstrumentTransport(nil),
	})
	svcs := services.New(log, api)
	sessions := session.NewManager(log, store, svcs.Auth, session.Options{
		CookieName:      cfg.Session.CookieName,
		TTL:             cfg.Session.TTL,
		RevalidateAfter: cfg.Session.RevalidateAfter,
		Secure:          cfg.Session.SecureCookie,
	})
	formDecoder := schema.NewDecoder()
	formDecoder.IgnoreUnknownKeys(true)
	app := &Application{
		cfg:         cfg,
		log:         log,
		services:    svcs,
		sessions:    sessions,
		validator:   validator.New(),
		formDecoder: formDecoder,
		metrics:     m,
		done:        make(chan struct{}),
		Http: &Http{
			log:   log,
			cfg:   cfg,
			views: views.Must(views.New()),
		},
	}
	return app
}

// background runs fn in a goroutine that Close waits for. fn must return once app.done
// is closed.
func (app *Application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		fn()
	}()
}

// Close stops the background goroutines and waits for them to exit.
func (app *Application) Close() {
	app.closeOnce.Do(func() { close(app.done) })
	app.wg.Wait()
}
