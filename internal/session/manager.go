package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/utils"
)

// CookieName is the name of the browser session cookie.
const CookieName = "sessionid"

// Manager issues, resolves and clears session cookies on top of a Store.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
}

// NewManager returns a Manager whose sessions live for ttl.  secure marks
// the cookie Secure and should be set behind HTTPS.
func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &Manager{store: store, ttl: ttl, secure: secure}
}

// Store exposes the underlying store for profile updates.
func (m *Manager) Store() Store { return m.store }

// Open starts a session for a and writes the cookie.  Any session the
// browser already carried is discarded first.
func (m *Manager) Open(c echo.Context, a *model.Account) (model.Session, error) {
	ctx := c.Request().Context()
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		_ = m.store.Delete(ctx, utils.HashToken(ck.Value))
	}
	raw, err := utils.NewSessionToken()
	if err != nil {
		return model.Session{}, err
	}
	s := model.Session{
		TokenHash: utils.HashToken(raw),
		AccountID: a.ID,
		Kind:      a.Kind,
		Role:      a.Role,
		Name:      a.FullName(),
		ExpiresAt: time.Now().UTC().Add(m.ttl).Truncate(time.Microsecond),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return model.Session{}, err
	}
	c.SetCookie(m.cookie(raw, s.ExpiresAt))
	return s, nil
}

// Current resolves the session named by the request cookie.  It returns
// ErrNotFound when there is no cookie or no live session behind it.
func (m *Manager) Current(c echo.Context) (model.Session, error) {
	ck, err := c.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return model.Session{}, ErrNotFound
	}
	return m.Resolve(c.Request().Context(), ck.Value)
}

// Resolve looks up the session for a raw cookie token.
func (m *Manager) Resolve(ctx context.Context, raw string) (model.Session, error) {
	s, err := m.store.Load(ctx, utils.HashToken(raw))
	if errors.Is(err, ErrNotFound) {
		return model.Session{}, ErrNotFound
	}
	return s, err
}

// Close deletes the server side session, if any, and expires the cookie.
// Closing without a session is not an error.
func (m *Manager) Close(c echo.Context) error {
	var err error
	if ck, cerr := c.Cookie(CookieName); cerr == nil && ck.Value != "" {
		err = m.store.Delete(c.Request().Context(), utils.HashToken(ck.Value))
	}
	expired := m.cookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)
	return err
}

func (m *Manager) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
