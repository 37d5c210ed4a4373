package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/metrics"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/service"
)

const manageMoviesPath = "/admin/manage_movies/"

// AdminHandler serves the admin pages and the moderation API.  Routes are
// gated on an admin session before any method here runs.
type AdminHandler struct {
	Catalog  *service.CatalogService
	Reviews  *service.ReviewService
	Activity *service.ActivityService
}

func NewAdminHandler(catalog *service.CatalogService, reviews *service.ReviewService, activity *service.ActivityService) *AdminHandler {
	return &AdminHandler{Catalog: catalog, Reviews: reviews, Activity: activity}
}

// Dashboard renders the counters and the recent activity feed.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	stats, err := h.Activity.Stats(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "home_admin", "Dashboard", nil, userMessage(c, err))
	}
	feed, err := h.Activity.Recent(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "home_admin", "Dashboard", echo.Map{"stats": stats}, userMessage(c, err))
	}
	return render(c, http.StatusOK, "home_admin", "Dashboard", echo.Map{"stats": stats, "activity": feed}, "")
}

// AddMoviePage renders the add-movie form; the form posts JSON to AddMovie.
func (h *AdminHandler) AddMoviePage(c echo.Context) error {
	return render(c, http.StatusOK, "add_movie", "Add movie", nil, "")
}

// AddMovie creates a movie from a JSON (or form) body.
func (h *AdminHandler) AddMovie(c echo.Context) error {
	var in service.MovieInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Invalid request data."})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	m, err := h.Catalog.CreateMovie(ctx, in)
	if err != nil {
		return jsonFail(c, err)
	}
	return jsonOK(c, http.StatusCreated, fmt.Sprintf("Movie \"%s\" has been added successfully!", m.Title),
		echo.Map{"movie_id": m.ID})
}

// ManageMovies lists the catalog with edit and delete actions.
func (h *AdminHandler) ManageMovies(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	movies, err := h.Catalog.Movies(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "manage_movies", "Manage movies", nil, userMessage(c, err))
	}
	return render(c, http.StatusOK, "manage_movies", "Manage movies", echo.Map{"movies": movies}, "")
}

// EditMoviePage renders the edit form for one movie.
func (h *AdminHandler) EditMoviePage(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		setFlash(c, flashError, service.MsgMovieMissing)
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	m, err := h.Catalog.Movie(ctx, id)
	if err != nil {
		setFlash(c, flashError, userMessage(c, err))
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	return render(c, http.StatusOK, "edit_movie", "Edit movie", echo.Map{"movie": m}, "")
}

// EditMovie applies the submitted form.  Only fields present in the form
// are changed.
func (h *AdminHandler) EditMovie(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		setFlash(c, flashError, service.MsgMovieMissing)
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	form, err := c.FormParams()
	if err != nil {
		setFlash(c, flashError, "Invalid request data.")
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	field := func(key string) *string {
		vs, ok := form[key]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}
	patch := service.MoviePatch{
		Title:            field("title"),
		Genre:            field("genre"),
		AdditionalGenres: field("additionalGenres"),
		ReleaseYear:      field("releaseYear"),
		Director:         field("director"),
		Cast:             field("cast"),
		Duration:         field("duration"),
		Rating:           field("rating"),
		IMDbRating:       field("imdbRating"),
		Description:      field("description"),
		Poster:           field("poster"),
		Trailer:          field("trailer"),
		Language:         field("language"),
		Country:          field("country"),
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	m, err := h.Catalog.UpdateMovie(ctx, id, patch)
	switch {
	case err == nil:
		setFlash(c, flashSuccess, fmt.Sprintf("Movie \"%s\" has been updated successfully.", m.Title))
		return c.Redirect(http.StatusFound, manageMoviesPath)
	case errors.Is(err, service.ErrNotFound):
		setFlash(c, flashError, userMessage(c, err))
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	msg := userMessage(c, err)
	current, lerr := h.Catalog.Movie(ctx, id)
	if lerr != nil {
		setFlash(c, flashError, msg)
		return c.Redirect(http.StatusFound, manageMoviesPath)
	}
	return render(c, statusFor(err), "edit_movie", "Edit movie", echo.Map{"movie": current}, msg)
}

// DeleteMovie removes a movie together with its reviews.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := paramID(c, "id")
	ctx, cancel := requestCtx(c)
	defer cancel()

	var (
		m   *model.Movie
		err error
	)
	if ok {
		m, err = h.Catalog.DeleteMovie(ctx, id)
	} else {
		err = &service.Error{Kind: service.ErrNotFound, Message: service.MsgMovieMissing}
	}

	if wantsJSON(c) {
		if err != nil {
			return jsonFail(c, err)
		}
		return jsonOK(c, http.StatusOK, fmt.Sprintf("Movie \"%s\" has been deleted successfully.", m.Title), nil)
	}
	if err != nil {
		setFlash(c, flashError, userMessage(c, err))
	} else {
		setFlash(c, flashSuccess, fmt.Sprintf("Movie \"%s\" has been deleted successfully.", m.Title))
	}
	return c.Redirect(http.StatusFound, manageMoviesPath)
}

// ManageReviews lists every review, newest first.
func (h *AdminHandler) ManageReviews(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	reviews, err := h.Reviews.All(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "manage_reviews", "Manage reviews", nil, userMessage(c, err))
	}
	return render(c, http.StatusOK, "manage_reviews", "Manage reviews", echo.Map{"reviews": reviews}, "")
}

// ApproveReview publishes a pending review.
func (h *AdminHandler) ApproveReview(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": service.MsgReviewMissing})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Reviews.Approve(ctx, id); err != nil {
		return jsonFail(c, err)
	}
	metrics.ReviewsModerated.WithLabelValues(string(model.StatusApproved)).Inc()
	return jsonOK(c, http.StatusOK, "Review approved successfully.", nil)
}

type rejectReq struct {
	Reason string `json:"reason" form:"reason"`
}

// RejectReview rejects a pending review with a reason shown to its author.
func (h *AdminHandler) RejectReview(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": service.MsgReviewMissing})
	}
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msgInvalidJSON})
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Reviews.Reject(ctx, id, req.Reason); err != nil {
		return jsonFail(c, err)
	}
	metrics.ReviewsModerated.WithLabelValues(string(model.StatusRejected)).Inc()
	return jsonOK(c, http.StatusOK, "Review rejected successfully.", nil)
}
