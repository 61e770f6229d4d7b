package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"streamflix/proj/internal/session"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil && rec != http.ErrAbortHandler {
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	if app.cfg.Limiter.Enabled {
		app.background(func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-app.done:
					return
				case <-ticker.C:
				}
				mu.Lock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) > 5*time.Minute {
						delete(clients, ip)
					}
				}
				mu.Unlock()
			}
		})
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !app.cfg.Limiter.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			// RealIP leaves a bare address without a port.
			ip = r.RemoteAddr
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()
		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.TooManyRequests(w, r, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// InstrumentRequests records every browser request under its chi route pattern.
func (app *Application) InstrumentRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		app.metrics.RequestStarted()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			app.metrics.ObserveRequest(route, r.Method, status, time.Since(start))
		}()
		next.ServeHTTP(ww, r)
	})
}

type CtxKey string

const CtxKeySession CtxKey = "session"

func contextSetSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), CtxKeySession, sess))
}

// contextGetSession never returns nil; requests that skipped LoadSession are anonymous.
func contextGetSession(r *http.Request) *session.Session {
	sess, ok := r.Context().Value(CtxKeySession).(*session.Session)
	if !ok || sess == nil {
		return session.Anonymous()
	}
	return sess
}

// LoadSession rehydrates the browser's session, validating its token when due.
func (app *Application) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := app.sessions.Load(w, r)
		if err != nil {
			app.Http.ServerError(w, r, err, "")
			return
		}
		next.ServeHTTP(w, contextSetSession(r, sess))
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contextGetSession(r).IsAuthenticated() {
			app.Http.Redirect(w, r, "/login")
			return
		}
		w.Header().Add("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAnonymousUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextGetSession(r).IsAuthenticated() {
			app.Http.Redirect(w, r, "/movies")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin must run after requireAuthenticatedUser.
func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contextGetSession(r).IsAdmin() {
			app.Http.Forbidden(w, r, "You are not allowed to do that.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
