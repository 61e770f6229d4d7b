package main

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"streamflix/proj/internal/config"
	"streamflix/proj/internal/lib/logger"
	"streamflix/proj/internal/session"
	tu "streamflix/proj/internal/testing"
)

func newTestConfig(apiURL string) *config.Config {
	return &config.Config{
		API: config.API{BaseURL: apiURL, Timeout: 5 * time.Second},
		Session: config.Session{
			Store:      config.SessionStoreMemory,
			CookieName: "streamflix_session",
			TTL:        time.Hour,
		},
	}
}

// NewTestApplication wires the application against api. A nil api points the client at
// an address nothing listens on.
func NewTestApplication(api *tu.FakeAPI, t *testing.T) *Application {
	t.Helper()
	apiURL := "http://127.0.0.1:1"
	if api != nil {
		apiURL = api.Serve(t).URL
	}
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { store.Close() })
	app := NewApplication(newTestConfig(apiURL), logger.Discard(), store)
	t.Cleanup(app.Close)
	return app
}

type testServer struct {
	*httptest.Server
}

// newTestServer serves app with a client that keeps cookies and does not follow
// redirects.
func newTestServer(t *testing.T, app *Application) *testServer {
	t.Helper()
	ts := httptest.NewServer(app.routes())
	t.Cleanup(ts.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ts.Client().Jar = jar
	ts.Client().CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &testServer{ts}
}

type testResponse struct {
	status   int
	location string
	body     string
}

func (ts *testServer) do(t *testing.T, req *http.Request) testResponse {
	t.Helper()
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
	}
}

func (ts *testServer) get(t *testing.T, path string) testResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	return ts.do(t, req)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) testResponse {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ts.do(t, req)
}

func (ts *testServer) login(t *testing.T, email, password string) testResponse {
	t.Helper()
	resp := ts.postForm(t, "/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(t, http.StatusSeeOther, resp.status, resp.body)
	require.Equal(t, "/movies", resp.location)
	return resp
}

func (ts *testServer) sessionCookie(t *testing.T, app *Application) *http.Cookie {
	t.Helper()
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	for _, c := range ts.Client().Jar.Cookies(u) {
		if c.Name == app.cfg.Session.CookieName {
			return c
		}
	}
	return nil
}

func movieValues(title string, year string) url.Values {
	return url.Values{
		"title":       {title},
		"director":    {"Director"},
		"year":        {year},
		"description": {"Description"},
		"genre":       {"Drama"},
	}
}
