package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"streamflix/proj/internal/domain/models"
)

// Validator resolves a bearer token into the identity it belongs to.
type Validator interface {
	CurrentUser(ctx context.Context, token string) (*models.User, error)
}

type Options struct {
	CookieName string
	TTL        time.Duration
	// RevalidateAfter bounds how long a successful validation is trusted. Zero means the
	// token is checked on every Load.
	RevalidateAfter time.Duration
	Secure          bool
}

// Session is the per-request view of one browser's record. The zero value is an
// anonymous session with nothing persisted.
type Session struct {
	id   string
	data Data
}

func Anonymous() *Session {
	return &Session{}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Token() string {
	return s.data.Token
}

func (s *Session) User() models.User {
	return s.data.User
}

func (s *Session) IsAuthenticated() bool {
	return s.data.Token != "" && !s.data.User.IsAnonymous()
}

func (s *Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.data.User.IsAdmin
}

type Manager struct {
	log       *slog.Logger
	store     Store
	validator Validator
	opts      Options
	now       func() time.Time
}

func NewManager(log *slog.Logger, store Store, validator Validator, opts Options) *Manager {
	return &Manager{
		log:       log,
		store:     store,
		validator: validator,
		opts:      opts,
		now:       time.Now,
	}
}

// Load rehydrates the session named by the request cookie. A stored token is checked
// against the validator when its last check is older than RevalidateAfter; a failed
// check deletes the record and the request continues anonymous. A record that is
// deleted while the check runs stays deleted.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "session.Manager.Load"
	ctx := r.Context()
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return Anonymous(), nil
	}
	log := m.log.With("op", op, "session_id", cookie.Value)
	data, err := m.store.Get(ctx, cookie.Value)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Debug("unknown session id")
			m.expireCookie(w)
			return Anonymous(), nil
		case errors.Is(err, ErrCorrupt):
			log.Warn("dropping undecodable session record", "errMsg", err.Error())
			if err := m.store.Delete(ctx, cookie.Value); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			m.expireCookie(w)
			return Anonymous(), nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sess := &Session{id: cookie.Value, data: *data}
	if sess.data.Token == "" || !m.needsValidation(sess.data) {
		return sess, nil
	}
	user, err := m.validator.CurrentUser(ctx, sess.data.Token)
	if err != nil {
		log.Info("token validation failed, clearing session", "errMsg", err.Error())
		if err := m.Clear(w, r, sess); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return sess, nil
	}
	sess.data.User = *user
	sess.data.ValidatedAt = m.now()
	if err := m.update(ctx, sess); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Info("session ended during validation")
			*sess = Session{}
			m.expireCookie(w)
			return sess, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

// Login stores token and user under a fresh session id. The previous record, if any,
// is deleted; its pending notices carry over.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, sess *Session, token string, user *models.User) error {
	const op = "session.Manager.Login"
	ctx := r.Context()
	if sess.id != "" {
		if err := m.store.Delete(ctx, sess.id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	sess.id = uuid.NewString()
	sess.data = Data{
		Token:       token,
		User:        *user,
		ValidatedAt: m.now(),
		Notices:     sess.data.Notices,
	}
	if err := m.save(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.setCookie(w, sess.id)
	m.log.Info("user logged in", "op", op, "user_id", user.ID, "is_admin", user.IsAdmin)
	return nil
}

// Clear deletes the record and leaves sess anonymous.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request, sess *Session) error {
	const op = "session.Manager.Clear"
	id := sess.id
	*sess = Session{}
	m.expireCookie(w)
	if id == "" {
		return nil
	}
	if err := m.store.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Flash queues a notice for the next rendered page, starting a session if the browser
// has none yet.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, sess *Session, notice models.Notice) error {
	const op = "session.Manager.Flash"
	if sess.id == "" {
		sess.id = uuid.NewString()
		m.setCookie(w, sess.id)
	}
	sess.data.Notices = append(sess.data.Notices, notice)
	if err := m.save(r.Context(), sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PopNotices returns the queued notices and removes them from the record. A record
// deleted meanwhile is not written back.
func (m *Manager) PopNotices(r *http.Request, sess *Session) ([]models.Notice, error) {
	const op = "session.Manager.PopNotices"
	if len(sess.data.Notices) == 0 {
		return nil, nil
	}
	notices := sess.data.Notices
	sess.data.Notices = nil
	if err := m.update(r.Context(), sess); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notices, nil
}

func (m *Manager) needsValidation(data Data) bool {
	if data.ValidatedAt.IsZero() || m.opts.RevalidateAfter <= 0 {
		return true
	}
	return m.now().Sub(data.ValidatedAt) >= m.opts.RevalidateAfter
}

func (m *Manager) save(ctx context.Context, sess *Session) error {
	data := sess.data
	return m.store.Set(ctx, sess.id, &data, m.opts.TTL)
}

func (m *Manager) update(ctx context.Context, sess *Session) error {
	data := sess.data
	return m.store.Update(ctx, sess.id, &data, m.opts.TTL)
}

func (m *Manager) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.opts.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) expireCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
