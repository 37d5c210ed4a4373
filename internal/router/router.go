package router // package router defines how HTTP routes are registered

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/movie-review/internal/handler" // handlers that implement each page and endpoint
)

// RegisterRoutes registers the operational endpoints: the health check used
// by load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers signup, login and logout.  The form and JSON
// submissions share one path per action; limiter guards the POSTs against
// credential stuffing.  Logout is POST only; the layout posts a small form.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	e.GET("/signup/", a.SignupPage)
	e.POST("/signup/", a.Signup, limiter)
	e.GET("/login/", a.LoginPage)
	e.POST("/login/", a.Login, limiter)
	e.POST("/logout/", a.Logout)
	e.GET("/me/", a.Me)
}

// RegisterPublic registers the landing page and the read-only JSON feeds.
// The feeds go through the response cache.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	e.GET("/", p.Home)
	e.GET("/get_movies/", p.GetMovies, cache)
	e.GET("/get_users/", p.GetUsers, cache)
	e.GET("/get_reviews/", p.GetReviews, cache)
	e.GET("/get_recent_activity/", p.GetRecentActivity, cache)
}
