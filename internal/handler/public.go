// Package handler exposes the HTTP handlers of the movie review site: the
// HTML pages for users and admins plus the small JSON read API used by the
// admin dashboard.
//
// This file holds the unauthenticated endpoints.  The JSON feeds return bare
// arrays and only the fields the dashboard needs; password hashes and
// moderation notes never leave the server here.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/repository"
	"github.com/iliyamo/movie-review/internal/service"
)

// PublicHandler aggregates what the public endpoints read from.
type PublicHandler struct {
	Movies   *repository.MovieRepo   // catalog listing
	Accounts *repository.AccountRepo // registered users
	Reviews  *repository.ReviewRepo  // every review, any status
	Activity *service.ActivityService
}

func NewPublicHandler(movies *repository.MovieRepo, accounts *repository.AccountRepo, reviews *repository.ReviewRepo, activity *service.ActivityService) *PublicHandler {
	return &PublicHandler{Movies: movies, Accounts: accounts, Reviews: reviews, Activity: activity}
}

// PublicMovie is one entry of GET /get_movies/.
type PublicMovie struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Genre       string    `json:"genre"`
	ReleaseDate string    `json:"release_date"` // YYYY-MM-DD
	Director    string    `json:"director"`
	PosterURL   string    `json:"poster_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PublicUser is one entry of GET /get_users/.
type PublicUser struct {
	ID        uint64    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublicReview is one entry of GET /get_reviews/.
type PublicReview struct {
	ID            uint64    `json:"id"`
	UserFirstName string    `json:"user_first_name"`
	UserLastName  string    `json:"user_last_name"`
	MovieTitle    string    `json:"movie_title"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Home renders the landing page with the catalog, newest first.
func (h *PublicHandler) Home(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "home", "", echo.Map{"movies": nil}, userMessage(c, err))
	}
	return render(c, http.StatusOK, "home", "", echo.Map{"movies": movies}, "")
}

// GetMovies lists every movie.
func (h *PublicHandler) GetMovies(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	movies, err := h.Movies.ListAll(ctx)
	if err != nil {
		return jsonFail(c, err)
	}
	out := make([]PublicMovie, 0, len(movies))
	for _, m := range movies {
		out = append(out, publicMovie(m))
	}
	return c.JSON(http.StatusOK, out)
}

// GetUsers lists the accounts of kind user.
func (h *PublicHandler) GetUsers(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	accounts, err := h.Accounts.ListByKind(ctx, model.KindUser)
	if err != nil {
		return jsonFail(c, err)
	}
	out := make([]PublicUser, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, PublicUser{
			ID:        a.ID,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Role:      a.Role,
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetReviews lists every review with its author and movie title.
func (h *PublicHandler) GetReviews(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ListAll(ctx)
	if err != nil {
		return jsonFail(c, err)
	}
	out := make([]PublicReview, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, PublicReview{
			ID:            r.ID,
			UserFirstName: r.UserFirstName,
			UserLastName:  r.UserLastName,
			MovieTitle:    r.MovieTitle,
			Rating:        r.Rating,
			Comment:       r.Comment,
			Status:        string(r.Status),
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// GetRecentActivity returns the merged activity feed, at most 20 entries.
func (h *PublicHandler) GetRecentActivity(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	feed, err := h.Activity.Recent(ctx)
	if err != nil {
		return jsonFail(c, err)
	}
	if feed == nil {
		feed = []model.Activity{}
	}
	return c.JSON(http.StatusOK, feed)
}

func publicMovie(m model.Movie) PublicMovie {
	pm := PublicMovie{
		ID:        m.ID,
		Title:     m.Title,
		Genre:     m.Genre,
		Director:  m.Director,
		PosterURL: m.PosterURL.String,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if !m.ReleaseDate.IsZero() {
		pm.ReleaseDate = m.ReleaseDate.Format("2006-01-02")
	}
	return pm
}
