package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/config"
	"github.com/iliyamo/movie-review/internal/metrics"
	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/service"
	"github.com/iliyamo/movie-review/internal/session"
	"github.com/iliyamo/movie-review/internal/utils"
)

// AuthHandler bundles dependencies for signup, login and logout.  Every
// endpoint accepts either a browser form or a JSON body; JSON callers get a
// JSON answer and a bearer token alongside the session cookie.
type AuthHandler struct {
	Cfg      config.Config
	Auth     *service.AuthService
	Sessions *session.Manager
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth, Sessions: sessions}
}

const msgInvalidJSON = "Invalid JSON data."

// SignupPage renders the signup form.  Signed-in callers go to their home.
func (h *AuthHandler) SignupPage(c echo.Context) error {
	if s, ok := middleware.CurrentSession(c); ok {
		return c.Redirect(http.StatusFound, homeFor(s.Kind))
	}
	return render(c, http.StatusOK, "signup", "Sign up", echo.Map{"form": service.SignupInput{}}, "")
}

// Signup creates an account and signs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	isJSON := wantsJSON(c)
	var in service.SignupInput
	if err := c.Bind(&in); err != nil {
		if isJSON {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msgInvalidJSON})
		}
		return render(c, http.StatusBadRequest, "signup", "Sign up", echo.Map{"form": in}, service.MsgFillAllFields)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Auth.Signup(ctx, in)
	if err != nil {
		if isJSON {
			return jsonFail(c, err)
		}
		in.Password, in.ConfirmPassword = "", ""
		return render(c, statusFor(err), "signup", "Sign up", echo.Map{"form": in}, userMessage(c, err))
	}
	return h.signIn(c, a, http.StatusCreated, "Account created successfully.")
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if s, ok := middleware.CurrentSession(c); ok {
		return c.Redirect(http.StatusFound, homeFor(s.Kind))
	}
	return render(c, http.StatusOK, "login", "Log in", echo.Map{"email": ""}, "")
}

// Login verifies credentials and opens a session.  Unknown email and wrong
// password produce the same answer.
func (h *AuthHandler) Login(c echo.Context) error {
	isJSON := wantsJSON(c)
	var in service.LoginInput
	if err := c.Bind(&in); err != nil {
		if isJSON {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": msgInvalidJSON})
		}
		return render(c, http.StatusBadRequest, "login", "Log in", echo.Map{"email": ""}, service.MsgFillAllFields)
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	a, err := h.Auth.Login(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			metrics.RecordLogin(false)
		}
		if isJSON {
			return jsonFail(c, err)
		}
		return render(c, statusFor(err), "login", "Log in", echo.Map{"email": strings.TrimSpace(in.Email)}, userMessage(c, err))
	}
	metrics.RecordLogin(true)
	return h.signIn(c, a, http.StatusOK, "Login successful.")
}

// signIn opens the cookie session for a and answers the way the caller
// expects: JSON with a bearer token, or a redirect to the home page.
func (h *AuthHandler) signIn(c echo.Context, a *model.Account, status int, msg string) error {
	if _, err := h.Sessions.Open(c, a); err != nil {
		if wantsJSON(c) {
			return jsonFail(c, err)
		}
		log.Error().Err(err).Uint64("account_id", a.ID).Msg("open session failed")
		return render(c, http.StatusInternalServerError, "login", "Log in", echo.Map{"email": a.Email}, msgServerError)
	}
	home := homeFor(a.Kind)
	if !wantsJSON(c) {
		setFlash(c, flashSuccess, "Welcome, "+a.FirstName+"!")
		return c.Redirect(http.StatusFound, home)
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, utils.Claims{
		AccountID: a.ID,
		Kind:      string(a.Kind),
		Role:      a.Role,
		Name:      a.FullName(),
	}, h.Cfg.AccessTTLMin)
	if err != nil {
		return jsonFail(c, err)
	}
	return jsonOK(c, status, msg, echo.Map{"redirect": home, "token": tok.Token})
}

// Limited answers a signup or login the rate limiter refused.  Form callers
// get their form back with the message; nothing they typed is checked.
func (h *AuthHandler) Limited(c echo.Context, retryAfter int) error {
	if wantsJSON(c) {
		return middleware.DenyJSON(c, retryAfter)
	}
	if c.Path() == "/signup/" {
		var in service.SignupInput
		_ = c.Bind(&in)
		in.Password, in.ConfirmPassword = "", ""
		return render(c, http.StatusTooManyRequests, "signup", "Sign up", echo.Map{"form": in}, middleware.MsgRateLimited)
	}
	email := strings.TrimSpace(c.FormValue("email"))
	return render(c, http.StatusTooManyRequests, "login", "Log in", echo.Map{"email": email}, middleware.MsgRateLimited)
}

// Logout drops the server side session and expires the cookie.  It always
// succeeds from the caller's point of view.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.Sessions.Close(c); err != nil {
		log.Warn().Err(err).Msg("delete session failed")
	}
	if wantsJSON(c) {
		return jsonOK(c, http.StatusOK, "You have been logged out.", echo.Map{"redirect": middleware.LoginPath})
	}
	setFlash(c, flashSuccess, "You have been logged out.")
	return c.Redirect(http.StatusFound, middleware.LoginPath)
}

// Me describes the current principal.
func (h *AuthHandler) Me(c echo.Context) error {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "Not signed in."})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"id":      s.AccountID,
		"kind":    s.Kind,
		"role":    s.Role,
		"name":    s.Name,
	})
}
