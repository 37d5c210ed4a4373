package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/service"
	"github.com/iliyamo/movie-review/internal/session"
)

const (
	movieListPath = "/movies/"
	settingsPath  = "/settings/"
)

// UserHandler serves the pages of signed-in users: browsing, reviewing and
// account settings.
type UserHandler struct {
	Auth     *service.AuthService
	Catalog  *service.CatalogService
	Reviews  *service.ReviewService
	Sessions *session.Manager
}

func NewUserHandler(auth *service.AuthService, catalog *service.CatalogService, reviews *service.ReviewService, sessions *session.Manager) *UserHandler {
	return &UserHandler{Auth: auth, Catalog: catalog, Reviews: reviews, Sessions: sessions}
}

// principal returns the session the route gate already checked.
func principal(c echo.Context) *model.Session {
	s, _ := middleware.CurrentSession(c)
	return s
}

func moviePath(id uint64) string {
	return movieListPath + strconv.FormatUint(id, 10) + "/"
}

// Home renders the user landing page.
func (h *UserHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home_user", "Home", nil, "")
}

// Movies lists the catalog.
func (h *UserHandler) Movies(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	movies, err := h.Catalog.Movies(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "movie_list", "Movies", nil, userMessage(c, err))
	}
	return render(c, http.StatusOK, "movie_list", "Movies", echo.Map{"movies": movies}, "")
}

// MovieDetails shows one movie with its reviews and whether the caller has
// reviewed it already.
func (h *UserHandler) MovieDetails(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		setFlash(c, flashError, service.MsgMovieMissing)
		return c.Redirect(http.StatusFound, movieListPath)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	m, err := h.Catalog.Movie(ctx, id)
	if err != nil {
		setFlash(c, flashError, userMessage(c, err))
		return c.Redirect(http.StatusFound, movieListPath)
	}
	reviews, err := h.Reviews.ForMovie(ctx, id)
	if err != nil {
		return render(c, http.StatusInternalServerError, "movie_details", m.Title, echo.Map{"movie": m}, userMessage(c, err))
	}
	reviewed, err := h.Reviews.HasReviewed(ctx, principal(c).AccountID, id)
	if err != nil {
		return render(c, http.StatusInternalServerError, "movie_details", m.Title, echo.Map{"movie": m}, userMessage(c, err))
	}
	return render(c, http.StatusOK, "movie_details", m.Title, echo.Map{
		"movie":    m,
		"reviews":  reviews,
		"reviewed": reviewed,
	}, "")
}

// MyReviews lists the caller's reviews with their moderation status.
func (h *UserHandler) MyReviews(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	reviews, err := h.Reviews.ForUser(ctx, principal(c).AccountID)
	if err != nil {
		return render(c, http.StatusInternalServerError, "my_reviews", "My reviews", nil, userMessage(c, err))
	}
	return render(c, http.StatusOK, "my_reviews", "My reviews", echo.Map{"reviews": reviews}, "")
}

// Profile shows the account and its review count.  A session whose account
// has disappeared is closed.
func (h *UserHandler) Profile(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, ok, err := h.account(c)
	if !ok {
		return err
	}
	n, err := h.Reviews.CountForUser(ctx, a.ID)
	if err != nil {
		return render(c, http.StatusInternalServerError, "profile", "Profile", echo.Map{"account": a}, userMessage(c, err))
	}
	return render(c, http.StatusOK, "profile", "Profile", echo.Map{"account": a, "reviews_count": n}, "")
}

// SettingsPage renders the profile and password forms.
func (h *UserHandler) SettingsPage(c echo.Context) error {
	a, ok, err := h.account(c)
	if !ok {
		return err
	}
	return render(c, http.StatusOK, "settings", "Settings", echo.Map{"account": a}, "")
}

// Settings updates name and email.  Fields missing from the form keep their
// value.  Live sessions of the account pick up the new display name.
func (h *UserHandler) Settings(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		setFlash(c, flashError, "Invalid request data.")
		return c.Redirect(http.StatusFound, settingsPath)
	}
	field := func(key string) *string {
		if _, ok := form[key]; !ok {
			return nil
		}
		v := form.Get(key)
		return &v
	}
	in := service.ProfileInput{
		FirstName: field("first_name"),
		LastName:  field("last_name"),
		Email:     field("email"),
	}

	ctx, cancel := requestCtx(c)
	defer cancel()
	s := principal(c)

	a, err := h.Auth.UpdateProfile(ctx, s.AccountID, in)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return h.forget(c)
		}
		current, lerr := h.Auth.Account(ctx, s.AccountID)
		if lerr != nil {
			return h.forget(c)
		}
		return render(c, statusFor(err), "settings", "Settings", echo.Map{"account": current}, userMessage(c, err))
	}
	if err := h.Sessions.Store().Rename(ctx, a.ID, a.FullName()); err != nil {
		log.Warn().Err(err).Uint64("account_id", a.ID).Msg("refresh session name failed")
	}
	setFlash(c, flashSuccess, "Profile updated successfully.")
	return c.Redirect(http.StatusFound, "/profile/")
}

// ChangePassword replaces the password after checking the current one.
// Every other session of the account is signed out.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	var in service.PasswordInput
	if err := c.Bind(&in); err != nil {
		setFlash(c, flashError, service.MsgFillAllFields)
		return c.Redirect(http.StatusFound, settingsPath)
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	s := principal(c)

	if err := h.Auth.ChangePassword(ctx, s.AccountID, in); err != nil {
		setFlash(c, flashError, userMessage(c, err))
		return c.Redirect(http.StatusFound, settingsPath)
	}
	if err := h.Sessions.Store().DeleteForAccount(ctx, s.AccountID); err != nil {
		log.Warn().Err(err).Uint64("account_id", s.AccountID).Msg("revoke sessions failed")
	}
	if a, err := h.Auth.Account(ctx, s.AccountID); err == nil {
		if _, err := h.Sessions.Open(c, a); err != nil {
			log.Warn().Err(err).Uint64("account_id", a.ID).Msg("reopen session failed")
		}
	}
	setFlash(c, flashSuccess, "Password changed successfully.")
	return c.Redirect(http.StatusFound, settingsPath)
}

// SubmitReviewPage renders the review form, either for the movie in the URL
// or with a movie picker.
func (h *UserHandler) SubmitReviewPage(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	if id, ok := paramID(c, "id"); ok {
		if m, err := h.Catalog.Movie(ctx, id); err == nil {
			return render(c, http.StatusOK, "submit_review", "Write a review", echo.Map{"movie": m}, "")
		}
	}
	movies, err := h.Catalog.Movies(ctx)
	if err != nil {
		return render(c, http.StatusInternalServerError, "submit_review", "Write a review", nil, userMessage(c, err))
	}
	return render(c, http.StatusOK, "submit_review", "Write a review", echo.Map{"movies": movies}, "")
}

// SubmitReview records a pending review.  The movie comes from the form
// and falls back to the URL.
func (h *UserHandler) SubmitReview(c echo.Context) error {
	var in service.ReviewInput
	if err := c.Bind(&in); err != nil {
		if wantsJSON(c) {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msgInvalidJSON})
		}
		setFlash(c, flashError, service.MsgReviewFields)
		return c.Redirect(http.StatusFound, movieListPath)
	}
	if strings.TrimSpace(in.MovieID) == "" {
		in.MovieID = c.Param("id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	rv, err := h.Reviews.Submit(ctx, principal(c).AccountID, in)
	if wantsJSON(c) {
		if err != nil {
			return jsonFail(c, err)
		}
		return jsonOK(c, http.StatusCreated, "Review submitted successfully.", echo.Map{"review_id": rv.ID})
	}

	back := movieListPath
	if id, perr := strconv.ParseUint(strings.TrimSpace(in.MovieID), 10, 64); perr == nil && id > 0 {
		back = moviePath(id)
	}
	switch {
	case err == nil:
		setFlash(c, flashSuccess, "Review submitted successfully.")
	case errors.Is(err, service.ErrNotFound):
		setFlash(c, flashError, userMessage(c, err))
		back = movieListPath
	default:
		setFlash(c, flashError, userMessage(c, err))
	}
	return c.Redirect(http.StatusFound, back)
}

// account loads the caller's account.  When it reports !ok the response has
// been written and the returned error should be passed up.
func (h *UserHandler) account(c echo.Context) (*model.Account, bool, error) {
	ctx, cancel := requestCtx(c)
	defer cancel()
	a, err := h.Auth.Account(ctx, principal(c).AccountID)
	switch {
	case err == nil:
		return a, true, nil
	case errors.Is(err, service.ErrNotFound):
		return nil, false, h.forget(c)
	default:
		return nil, false, render(c, http.StatusInternalServerError, "profile", "Profile", nil, userMessage(c, err))
	}
}

// forget signs out a session whose account no longer exists.
func (h *UserHandler) forget(c echo.Context) error {
	if err := h.Sessions.Close(c); err != nil {
		log.Warn().Err(err).Msg("delete session failed")
	}
	return c.Redirect(http.StatusFound, middleware.LoginPath)
}
