package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/model"
)

// LoginPath is where page routes send callers without a matching session.
const LoginPath = "/login/"

// RequireKind returns a middleware that lets a request through only when the
// loaded session belongs to a principal of the given kind.  Page routes
// redirect to the login page; API routes (api=true) answer 403 with a JSON
// body.  It assumes LoadSession ran earlier in the chain.
func RequireKind(kind model.Kind, api bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s, ok := CurrentSession(c)
			if ok && s.Is(kind) {
				return next(c)
			}
			if api {
				return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "Unauthorized access."})
			}
			return c.Redirect(http.StatusFound, LoginPath)
		}
	}
}
