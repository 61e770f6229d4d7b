// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"streamflix/proj/internal/domain/fields"
	"streamflix/proj/internal/domain/models"
)

// Route keys for FakeAPI.Calls and FakeAPI.Fail.
const (
	RouteLogin      = "login"
	RouteRegister   = "register"
	RouteDetails    = "details"
	RouteListMovies = "list"
	RouteGetMovie   = "get"
	RouteAddMovie   = "add"
	RouteUpdate     = "update"
	RouteComment    = "comment"
)

const (
	MsgCredentialsMismatch = "Email and password do not match"
	MsgRegistered          = "Registered Successfully"
	MsgPasswordTooShort    = "Password must be atleast 8 characters"
)

type FakeUser struct {
	ID       string
	Email    string
	Password string
	IsAdmin  bool
	Token    string
}

// FakeAPI is an in-memory stand-in for the remote movie REST API, served over
// httptest. It records how often each route was hit.
type FakeAPI struct {
	mu     sync.Mutex
	users  map[string]*FakeUser // by email
	tokens map[string]*FakeUser
	movies []models.Movie
	calls  map[string]int
	fail   map[string]int
	nextID int
}

func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		users:  make(map[string]*FakeUser),
		tokens: make(map[string]*FakeUser),
		calls:  make(map[string]int),
		fail:   make(map[string]int),
	}
}

// Serve starts the fake on an httptest server closed at the end of the test.
func (f *FakeAPI) Serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakeAPI) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/login", f.track(RouteLogin, f.login))
	mux.HandleFunc("POST /users/register", f.track(RouteRegister, f.register))
	mux.HandleFunc("GET /users/details", f.track(RouteDetails, f.authed(f.details)))
	mux.HandleFunc("GET /movies/getMovies", f.track(RouteListMovies, f.authed(f.listMovies)))
	mux.HandleFunc("GET /movies/getMovie/{id}", f.track(RouteGetMovie, f.authed(f.getMovie)))
	mux.HandleFunc("POST /movies/addMovie", f.track(RouteAddMovie, f.admin(f.addMovie)))
	mux.HandleFunc("PATCH /movies/updateMovie/{id}", f.track(RouteUpdate, f.admin(f.updateMovie)))
	mux.HandleFunc("PATCH /movies/addComment/{id}", f.track(RouteComment, f.authed(f.addComment)))
	return mux
}

// AddUser registers a user and returns the bearer token that identifies them.
func (f *FakeAPI) AddUser(email, password string, admin bool) *FakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &FakeUser{
		ID:       fmt.Sprintf("u%d", f.nextID),
		Email:    email,
		Password: password,
		IsAdmin:  admin,
	}
	u.Token = "token-" + u.ID
	f.users[email] = u
	f.tokens[u.Token] = u
	return u
}

// RevokeToken makes the API reject token from now on.
func (f *FakeAPI) RevokeToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// AddMovies appends n movies titled "Movie 1".."Movie n" in insertion order.
func (f *FakeAPI) AddMovies(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.appendMovie(models.MovieInput{
			Title:       fmt.Sprintf("Movie %d", len(f.movies)+1),
			Director:    "Director",
			Year:        2000,
			Description: "Description",
			Genre:       "Drama",
		})
	}
}

func (f *FakeAPI) Movies() []models.Movie {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Movie, len(f.movies))
	copy(out, f.movies)
	return out
}

func (f *FakeAPI) Movie(id string) (models.Movie, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexOf(id); i >= 0 {
		return f.movies[i], true
	}
	return models.Movie{}, false
}

// Fail makes route answer with status until cleared with status 0.
func (f *FakeAPI) Fail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.fail, route)
		return
	}
	f.fail[route] = status
}

func (f *FakeAPI) Calls(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[route]
}

func (f *FakeAPI) track(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[route]++
		status := f.fail[route]
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"message": "forced failure"})
			return
		}
		next(w, r)
	}
}

type userHandler func(w http.ResponseWriter, r *http.Request, u *FakeUser)

func (f *FakeAPI) authed(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		u, ok := f.tokens[token]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusForbidden, map[string]string{"auth": "Failed"})
			return
		}
		next(w, r, u)
	}
}

func (f *FakeAPI) admin(next userHandler) http.HandlerFunc {
	return f.authed(func(w http.ResponseWriter, r *http.Request, u *FakeUser) {
		if !u.IsAdmin {
			writeJSON(w, http.StatusForbidden, map[string]string{"auth": "Failed", "message": "Action Forbidden"})
			return
		}
		next(w, r, u)
	})
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	f.mu.Lock()
	u, ok := f.users[in.Email]
	f.mu.Unlock()
	switch {
	case !ok:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "No Email Found"})
	case u.Password != in.Password:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": MsgCredentialsMismatch})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"access": u.Token})
	}
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	if len(in.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": MsgPasswordTooShort})
		return
	}
	f.mu.Lock()
	_, exists := f.users[in.Email]
	f.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "Email already exists"})
		return
	}
	f.AddUser(in.Email, in.Password, in.IsAdmin)
	writeJSON(w, http.StatusCreated, map[string]string{"message": MsgRegistered})
}

func (f *FakeAPI) details(w http.ResponseWriter, r *http.Request, u *FakeUser) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{"_id": u.ID, "email": u.Email, "isAdmin": u.IsAdmin},
	})
}

func (f *FakeAPI) listMovies(w http.ResponseWriter, r *http.Request, _ *FakeUser) {
	writeJSON(w, http.StatusOK, map[string]any{"movies": f.Movies()})
}

func (f *FakeAPI) getMovie(w http.ResponseWriter, r *http.Request, _ *FakeUser) {
	m, ok := f.Movie(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Movie not found"})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (f *FakeAPI) addMovie(w http.ResponseWriter, r *http.Request, _ *FakeUser) {
	var in models.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	f.mu.Lock()
	m := f.appendMovie(in)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, m)
}

func (f *FakeAPI) updateMovie(w http.ResponseWriter, r *http.Request, _ *FakeUser) {
	var in models.MovieInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Movie not found"})
		return
	}
	m := &f.movies[i]
	m.Title, m.Director, m.Year = in.Title, in.Director, fields.Year(in.Year)
	m.Description, m.Genre = in.Description, in.Genre
	writeJSON(w, http.StatusOK, map[string]any{"message": "Movie updated successfully", "updatedMovie": m})
}

func (f *FakeAPI) addComment(w http.ResponseWriter, r *http.Request, u *FakeUser) {
	var in struct {
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid body"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexOf(r.PathValue("id"))
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Movie not found"})
		return
	}
	f.nextID++
	f.movies[i].Comments = append(f.movies[i].Comments, models.Comment{
		ID:      fmt.Sprintf("c%d", f.nextID),
		UserID:  u.ID,
		Comment: in.Comment,
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "comment added successfully", "updatedMovie": f.movies[i]})
}

// appendMovie must be called with f.mu held.
func (f *FakeAPI) appendMovie(in models.MovieInput) models.Movie {
	f.nextID++
	m := models.Movie{
		ID:          fmt.Sprintf("m%d", f.nextID),
		Title:       in.Title,
		Director:    in.Director,
		Year:        fields.Year(in.Year),
		Description: in.Description,
		Genre:       in.Genre,
		Comments:    []models.Comment{},
	}
	f.movies = append(f.movies, m)
	return m
}

func (f *FakeAPI) indexOf(id string) int {
	for i := range f.movies {
		if f.movies[i].ID == id {
			return i
		}
	}
	return -1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
