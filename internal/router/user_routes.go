package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/handler"
	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/model"
)

// RegisterUser registers the pages of signed-in users.  Every route
// requires a user session; anyone else is redirected to the login page.
func RegisterUser(e *echo.Echo, h *handler.UserHandler) {
	gate := middleware.RequireKind(model.KindUser, false)

	e.GET("/home_user/", h.Home, gate)
	e.GET("/movies/", h.Movies, gate)
	e.GET("/movies/:id/", h.MovieDetails, gate)
	e.GET("/my_reviews/", h.MyReviews, gate)
	e.GET("/profile/", h.Profile, gate)
	e.GET("/settings/", h.SettingsPage, gate)
	e.POST("/settings/", h.Settings, gate)
	e.POST("/settings/password/", h.ChangePassword, gate)

	// The movie may come from the URL or from the form.
	e.GET("/submit_review/", h.SubmitReviewPage, gate)
	e.POST("/submit_review/", h.SubmitReview, gate)
	e.GET("/submit_review/:id/", h.SubmitReviewPage, gate)
	e.POST("/submit_review/:id/", h.SubmitReview, gate)
}
