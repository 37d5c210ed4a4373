package middleware

// identity.go defines the helpers that store and read the request principal.
// LoadSession puts a *model.Session into the echo context under SessionKey;
// handlers read it back with CurrentSession.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/model"
)

// SessionKey is the echo context key holding the *model.Session.
const SessionKey = "session"

// CurrentSession returns the session loaded for this request, if any.
func CurrentSession(c echo.Context) (*model.Session, bool) {
	s, ok := c.Get(SessionKey).(*model.Session)
	return s, ok && s != nil
}

// principalID identifies the caller for rate-limit keys.  It returns
// "guest" when nobody is signed in.
func principalID(c echo.Context) string {
	s, ok := CurrentSession(c)
	if !ok {
		return "guest"
	}
	return string(s.Kind) + "-" + strconv.FormatUint(s.AccountID, 10)
}
