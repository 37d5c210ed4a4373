package middleware // contains reusable HTTP middleware functions

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/session"
	"github.com/iliyamo/movie-review/internal/utils"
)

// LoadSession resolves the caller and stores the resulting *model.Session
// under SessionKey.  The session cookie is tried first; API clients may
// instead send "Authorization: Bearer <jwt>" signed with secret.  Requests
// without valid credentials continue anonymously so that public pages work
// and the route gates decide what to do.
func LoadSession(mgr *session.Manager, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, err := mgr.Current(c)
			switch {
			case err == nil:
				c.Set(SessionKey, &s)
				return next(c)
			case !errors.Is(err, session.ErrNotFound):
				// store outage: treat as anonymous rather than failing public pages
				log.Error().Err(err).Msg("session lookup failed")
			}

			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return next(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			claims, exp, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return next(c)
			}
			c.Set(SessionKey, &model.Session{
				AccountID: claims.AccountID,
				Kind:      model.Kind(claims.Kind),
				Role:      claims.Role,
				Name:      claims.Name,
				ExpiresAt: exp,
			})
			return next(c)
		}
	}
}
