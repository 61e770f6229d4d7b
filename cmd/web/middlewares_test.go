package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamflix/proj/internal/domain/models"
	"streamflix/proj/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func loggedInSession(t *testing.T, app *Application, user models.User) *session.Session {
	t.Helper()
	sess := session.Anonymous()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, app.sessions.Login(httptest.NewRecorder(), req, sess, "token", &user))
	return sess
}

func TestRequireAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/movies", nil)
		request = contextSetSession(request, loggedInSession(t, app, models.User{ID: "u1"}))
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/movies", nil)
		request = contextSetSession(request, session.Anonymous())
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/login", recorder.Header().Get("Location"))
	})
	t.Run("no session in context", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/movies", nil))
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
	})
}

func TestRequireAnonymousUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/login", nil)
		request = contextSetSession(request, loggedInSession(t, app, models.User{ID: "u1"}))
		app.requireAnonymousUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "/movies", recorder.Header().Get("Location"))
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := contextSetSession(httptest.NewRequest(http.MethodGet, "/login", nil), session.Anonymous())
		app.requireAnonymousUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("admin", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := contextSetSession(httptest.NewRequest(http.MethodPost, "/movies", nil),
			loggedInSession(t, app, models.User{ID: "u1", IsAdmin: true}))
		app.requireAdmin(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("user", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := contextSetSession(httptest.NewRequest(http.MethodPost, "/movies", nil),
			loggedInSession(t, app, models.User{ID: "u2"}))
		app.requireAdmin(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "You are not allowed to do that.")
	})
}

func TestRecoverer(t *testing.T) {
	app := NewTestApplication(nil, t)
	for name, value := range map[string]any{
		"error":  errors.New("boom"),
		"string": "boom",
	} {
		t.Run(name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic(value) })
			assert.NotPanics(t, func() {
				app.Recoverer(panicking).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
			})
			assert.Equal(t, http.StatusInternalServerError, recorder.Code)
			assert.Equal(t, "close", recorder.Header().Get("Connection"))
		})
	}
}

func TestRateLimiter(t *testing.T) {
	app := NewTestApplication(nil, t)
	app.cfg.Limiter.Enabled = true
	app.cfg.Limiter.Rps = 0.001
	app.cfg.Limiter.Burst = 2
	handler := app.RateLimiter(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.2"
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRateLimiterCleanupStopsOnClose(t *testing.T) {
	app := NewTestApplication(nil, t)
	app.cfg.Limiter.Enabled = true
	app.cfg.Limiter.Rps = 10
	app.cfg.Limiter.Burst = 10
	app.routes()
	handler := app.RateLimiter(okHandler)

	closed := make(chan struct{})
	go func() {
		app.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("limiter cleanup goroutines did not exit")
	}
	app.Close()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRateLimiterDisabled(t *testing.T) {
	app := NewTestApplication(nil, t)
	handler := app.RateLimiter(okHandler)
	for i := 0; i < 10; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, recorder.Code)
	}
}

func TestLoadSessionServesAnonymousWithoutCookie(t *testing.T) {
	app := NewTestApplication(nil, t)
	var got *session.Session
	handler := app.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = contextGetSession(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, got)
	assert.False(t, got.IsAuthenticated())
}
