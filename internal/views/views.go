// package views renders the HTML pages from the embedded templates.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"streamflix/proj/internal/domain/filters"
	"streamflix/proj/internal/domain/models"
)

const (
	PageLogin       = "login"
	PageRegister    = "register"
	PageMoviesAdmin = "movies_admin"
	PageMoviesUser  = "movies_user"
	PageMovie       = "movie"
	PageError       = "error"
)

// MinYear is the earliest release year a movie form accepts.
const MinYear = 1888

//go:embed templates
var files embed.FS

// Modal is the admin create/edit dialog. It is rendered only when set.
type Modal struct {
	Title    string
	Action   string
	Submit   string
	Form     any
	CloseURL string
}

type TemplateData struct {
	CurrentYear     int
	User            models.User
	IsAuthenticated bool
	Toasts          []models.Notice
	Alerts          []models.Notice

	Form        any
	FieldErrors map[string]string

	Movies []models.Movie
	Page   filters.Metadata
	Movie  *models.Movie
	Modal  *Modal
	Error  string

	Status  int
	Message string
}

// AddNotices routes blocking notices to the alert banner and the rest to toasts.
func (d *TemplateData) AddNotices(notices ...models.Notice) {
	for _, n := range notices {
		if n.Blocking {
			d.Alerts = append(d.Alerts, n)
		} else {
			d.Toasts = append(d.Toasts, n)
		}
	}
}

func Truncate(n int, s string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func noticeClass(level string) string {
	if level == models.NoticeSuccess {
		return "success"
	}
	return "danger"
}

var functions = template.FuncMap{
	"truncate":    Truncate,
	"noticeClass": noticeClass,
	"currentYear": func() int { return time.Now().Year() },
	"minYear":     func() int { return MinYear },
	"add":         func(a, b int) int { return a + b },
	"sub":         func(a, b int) int { return a - b },
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the base layout and the partials.
func New() (*Renderer, error) {
	pages, err := fs.Glob(files, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		ts, err := template.New(name).Funcs(functions).ParseFS(files,
			"templates/base.html",
			"templates/partials/*.html",
			page,
		)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		r.pages[name] = ts
	}
	return r, nil
}

func Must(r *Renderer, err error) *Renderer {
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes page into a buffer first, so a template failure never leaves a
// half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data *TemplateData) error {
	ts, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("page %q does not exist", page)
	}
	if data.CurrentYear == 0 {
		data.CurrentYear = time.Now().Year()
	}
	var buf bytes.Buffer
	if err := ts.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("rendering page %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
