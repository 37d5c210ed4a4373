package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/service"
)

// msgServerError replaces the cause of unexpected failures in responses.
const msgServerError = "An error occurred."

// dbTimeout bounds every storage call made on behalf of a request.
const dbTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// wantsJSON reports whether the caller speaks JSON: either the body is JSON
// or the Accept header asks for it.
func wantsJSON(c echo.Context) bool {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return true
	}
	return strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// userMessage returns what the caller may see about err.  Unexpected errors
// are logged and replaced by a generic message.
func userMessage(c echo.Context, err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Message
	}
	log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("request failed")
	return msgServerError
}

// jsonFail writes {"success":false,"message":...} with the status for err.
func jsonFail(c echo.Context, err error) error {
	return c.JSON(statusFor(err), echo.Map{"success": false, "message": userMessage(c, err)})
}

func jsonOK(c echo.Context, status int, msg string, extra echo.Map) error {
	body := echo.Map{"success": true, "message": msg}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// homeFor is the landing page of each principal kind.
func homeFor(k model.Kind) string {
	if k == model.KindAdmin {
		return "/home_admin/"
	}
	return "/home_user/"
}

// ----- flash messages -----

const flashCookie = "flash"

const (
	flashSuccess = "success"
	flashError   = "error"
)

// flash is a one-shot message carried across a redirect in a cookie.
type flash struct {
	Kind    string
	Message string
}

func setFlash(c echo.Context, kind, msg string) {
	v := base64.RawURLEncoding.EncodeToString([]byte(kind + "\n" + msg))
	c.SetCookie(&http.Cookie{
		Name:     flashCookie,
		Value:    v,
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the flash cookie.
func popFlash(c echo.Context) *flash {
	ck, err := c.Cookie(flashCookie)
	if err != nil || ck.Value == "" {
		return nil
	}
	c.SetCookie(&http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1, HttpOnly: true})
	raw, err := base64.RawURLEncoding.DecodeString(ck.Value)
	if err != nil {
		return nil
	}
	kind, msg, ok := strings.Cut(string(raw), "\n")
	if !ok || (kind != flashSuccess && kind != flashError) {
		return nil
	}
	return &flash{Kind: kind, Message: msg}
}
