package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/handler"
	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/model"
)

// RegisterAdmin registers the admin pages and the moderation API.  Pages
// send strangers to the login page; the JSON endpoints answer 403 instead.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler) {
	page := middleware.RequireKind(model.KindAdmin, false)
	api := middleware.RequireKind(model.KindAdmin, true)

	// ---- Dashboard ----
	e.GET("/home_admin/", h.Dashboard, page)
	e.GET("/admin/", h.Dashboard, page)

	// ---- Movies ----
	e.GET("/add-movie/", h.AddMoviePage, page)
	e.POST("/add_movie/", h.AddMovie, api)
	e.GET("/admin/manage_movies/", h.ManageMovies, page)
	e.GET("/admin/movies/edit/:id/", h.EditMoviePage, page)
	e.POST("/admin/movies/edit/:id/", h.EditMovie, page)
	e.POST("/admin/movies/delete/:id/", h.DeleteMovie, page)

	// ---- Reviews ----
	e.GET("/admin/manage_reviews/", h.ManageReviews, page)
	e.POST("/admin/reviews/approve/:id/", h.ApproveReview, api)
	e.POST("/admin/reviews/reject/:id/", h.RejectReview, api)
}
