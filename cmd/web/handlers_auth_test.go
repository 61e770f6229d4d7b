package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamflix/proj/internal/lib/logger"
	"streamflix/proj/internal/session"
	tu "streamflix/proj/internal/testing"
)

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	app := NewTestApplication(tu.NewFakeAPI(), t)
	ts := newTestServer(t, app)

	for _, path := range []string{"/movies", "/movies/m1"} {
		resp := ts.get(t, path)
		assert.Equal(t, http.StatusSeeOther, resp.status, path)
		assert.Equal(t, "/login", resp.location, path)
	}
	resp := ts.postForm(t, "/movies/m1/comments", url.Values{"comment": {"hi"}})
	assert.Equal(t, "/login", resp.location)

	resp = ts.get(t, "/")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/movies", resp.location)
}

func TestLoginFlow(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("user@mail.com", "password1", false)
	api.AddMovies(3)
	app := NewTestApplication(api, t)
	ts := newTestServer(t, app)

	ts.login(t, "user@mail.com", "password1")
	assert.Equal(t, 1, api.Calls(tu.RouteDetails))
	require.NotNil(t, ts.sessionCookie(t, app))

	resp := ts.get(t, "/movies")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Login successful!")
	assert.Contains(t, resp.body, "user@mail.com")
	assert.Contains(t, resp.body, "Movie 3")

	resp = ts.get(t, "/movies")
	assert.NotContains(t, resp.body, "Login successful!")
}

func TestLoginReplacesSessionCookie(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("user@mail.com", "password1", false)
	app := NewTestApplication(api, t)
	ts := newTestServer(t, app)

	ts.postForm(t, "/register", url.Values{"email": {"new@mail.com"}, "password": {"password1"}, "confirm": {"password1"}})
	before := ts.sessionCookie(t, app)
	require.NotNil(t, before)

	ts.login(t, "user@mail.com", "password1")
	after := ts.sessionCookie(t, app)
	require.NotNil(t, after)
	assert.NotEqual(t, before.Value, after.Value)
}

func TestLoginFailures(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("user@mail.com", "password1", false)
	app := NewTestApplication(api, t)
	ts := newTestServer(t, app)

	t.Run("credentials mismatch", func(t *testing.T) {
		resp := ts.postForm(t, "/login", url.Values{"email": {"user@mail.com"}, "password": {"wrong"}})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Contains(t, resp.body, "Incorrect credentials. Try Again.")
		assert.NotContains(t, resp.body, `value="user@mail.com"`)
	})
	t.Run("unknown email shows server message", func(t *testing.T) {
		resp := ts.postForm(t, "/login", url.Values{"email": {"ghost@mail.com"}, "password": {"password1"}})
		assert.Equal(t, http.StatusUnauthorized, resp.status)
		assert.Contains(t, resp.body, "No Email Found")
	})
	t.Run("missing fields", func(t *testing.T) {
		calls := api.Calls(tu.RouteLogin)
		resp := ts.postForm(t, "/login", url.Values{"email": {""}, "password": {""}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
		assert.Contains(t, resp.body, "This field is required")
		assert.Equal(t, calls, api.Calls(tu.RouteLogin))
	})
	t.Run("details lookup fails", func(t *testing.T) {
		api.Fail(tu.RouteDetails, http.StatusInternalServerError)
		defer api.Fail(tu.RouteDetails, 0)
		resp := ts.postForm(t, "/login", url.Values{"email": {"user@mail.com"}, "password": {"password1"}})
		assert.Equal(t, http.StatusBadGateway, resp.status)
		assert.Contains(t, resp.body, "Failed to load user details.")
		assert.Equal(t, "/login", ts.get(t, "/movies").location)
	})
}

func TestLoginNetworkError(t *testing.T) {
	app := NewTestApplication(nil, t)
	ts := newTestServer(t, app)
	resp := ts.postForm(t, "/login", url.Values{"email": {"user@mail.com"}, "password": {"password1"}})
	assert.Equal(t, http.StatusBadGateway, resp.status)
	assert.Contains(t, resp.body, "Network error. Please try again.")
}

func TestLoginRejectionIgnoresErrorKey(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid payload"}`))
	}))
	t.Cleanup(api.Close)
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { store.Close() })
	app := NewApplication(newTestConfig(api.URL), logger.Discard(), store)
	t.Cleanup(app.Close)
	ts := newTestServer(t, app)

	resp := ts.postForm(t, "/login", url.Values{"email": {"user@mail.com"}, "password": {"password1"}})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Contains(t, resp.body, "User Not Found. Try Again.")
	assert.NotContains(t, resp.body, "invalid payload")
}

func TestAuthenticatedUserCannotVisitLogin(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("user@mail.com", "password1", false)
	ts := newTestServer(t, NewTestApplication(api, t))
	ts.login(t, "user@mail.com", "password1")

	for _, path := range []string{"/login", "/register"} {
		resp := ts.get(t, path)
		assert.Equal(t, http.StatusSeeOther, resp.status, path)
		assert.Equal(t, "/movies", resp.location, path)
	}
}

func TestRevokedTokenClearsSession(t *testing.T) {
	api := tu.NewFakeAPI()
	user := api.AddUser("user@mail.com", "password1", false)
	app := NewTestApplication(api, t)
	ts := newTestServer(t, app)
	ts.login(t, "user@mail.com", "password1")
	require.Equal(t, http.StatusOK, ts.get(t, "/movies").status)

	api.RevokeToken(user.Token)
	resp := ts.get(t, "/movies")
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/login", resp.location)
	assert.Nil(t, ts.sessionCookie(t, app))
}

func TestLogout(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("user@mail.com", "password1", false)
	app := NewTestApplication(api, t)
	ts := newTestServer(t, app)
	ts.login(t, "user@mail.com", "password1")

	resp := ts.postForm(t, "/logout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, "/login", resp.location)
	assert.Nil(t, ts.sessionCookie(t, app))
	assert.Equal(t, "/login", ts.get(t, "/movies").location)
}

func TestRegister(t *testing.T) {
	api := tu.NewFakeAPI()
	api.AddUser("taken@mail.com", "password1", false)
	ts := newTestServer(t, NewTestApplication(api, t))

	t.Run("success", func(t *testing.T) {
		resp := ts.postForm(t, "/register", url.Values{"email": {"new@mail.com"}, "password": {"password1"}, "confirm": {"password1"}})
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, "/login", resp.location)

		page := ts.get(t, "/login")
		assert.Contains(t, page.body, "Registration successful!")
		ts.login(t, "new@mail.com", "password1")
		ts.postForm(t, "/logout", nil)
	})
	t.Run("password mismatch never calls the api", func(t *testing.T) {
		calls := api.Calls(tu.RouteRegister)
		resp := ts.postForm(t, "/register", url.Values{"email": {"x@mail.com"}, "password": {"password1"}, "confirm": {"password2"}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
		assert.Contains(t, resp.body, "Passwords do not match")
		assert.Contains(t, resp.body, `value="x@mail.com"`)
		assert.Equal(t, calls, api.Calls(tu.RouteRegister))
	})
	t.Run("password too short", func(t *testing.T) {
		resp := ts.postForm(t, "/register", url.Values{"email": {"y@mail.com"}, "password": {"1234"}, "confirm": {"1234"}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
		assert.Contains(t, resp.body, "Password must be at least 8 characters")
	})
	t.Run("duplicate email", func(t *testing.T) {
		resp := ts.postForm(t, "/register", url.Values{"email": {"taken@mail.com"}, "password": {"password1"}, "confirm": {"password1"}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
		assert.Contains(t, resp.body, "Email already exists")
	})
	t.Run("upstream failure without message", func(t *testing.T) {
		api.Fail(tu.RouteRegister, http.StatusInternalServerError)
		defer api.Fail(tu.RouteRegister, 0)
		resp := ts.postForm(t, "/register", url.Values{"email": {"z@mail.com"}, "password": {"password1"}, "confirm": {"password1"}})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.status)
		assert.Contains(t, resp.body, "forced failure")
	})
}

func TestHealthcheck(t *testing.T) {
	ts := newTestServer(t, NewTestApplication(nil, t))
	resp := ts.get(t, "/healthcheck")
	require.Equal(t, http.StatusOK, resp.status)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.body), &body))
	assert.Equal(t, "available", body["status"])
	assert.Equal(t, version, body["version"])
}

func TestNotFoundPage(t *testing.T) {
	ts := newTestServer(t, NewTestApplication(nil, t))
	resp := ts.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "Page not found")
}
