package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/middleware"
)

func limitedContext(t *testing.T, path string, form url.Values, asJSON bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = r

	var req *http.Request
	if asJSON {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"email":"jane@example.com"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(path)
	return c, rec
}

func TestLimitedRendersLoginForm(t *testing.T) {
	c, rec := limitedContext(t, "/login/", url.Values{"email": {" jane@example.com "}, "password": {"secret1"}}, false)
	require.NoError(t, (&AuthHandler{}).Limited(c, 30))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, middleware.MsgRateLimited)
	assert.Contains(t, body, `value="jane@example.com"`)
	assert.NotContains(t, body, "secret1")
}

func TestLimitedRendersSignupForm(t *testing.T) {
	c, rec := limitedContext(t, "/signup/", url.Values{
		"first_name":       {"Jane"},
		"last_name":        {"Doe"},
		"email":            {"jane@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	}, false)
	require.NoError(t, (&AuthHandler{}).Limited(c, 30))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, middleware.MsgRateLimited)
	assert.Contains(t, body, `value="Jane"`)
	assert.NotContains(t, body, "secret1")
}

func TestLimitedAnswersJSONCallers(t *testing.T) {
	c, rec := limitedContext(t, "/login/", nil, true)
	require.NoError(t, (&AuthHandler{}).Limited(c, 12))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many attempts. Please try again later.","retry_after":12}`, rec.Body.String())
}
