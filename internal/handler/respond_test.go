package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/middleware"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/service"
)

func newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&service.Error{Kind: service.ErrValidation, Message: "bad"}, http.StatusBadRequest},
		{&service.Error{Kind: service.ErrAuth, Message: "who"}, http.StatusUnauthorized},
		{&service.Error{Kind: service.ErrNotFound, Message: "gone"}, http.StatusNotFound},
		{&service.Error{Kind: service.ErrConflict, Message: "dup"}, http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestJSONFailHidesUnexpectedErrors(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, jsonFail(c, errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"An error occurred."}`, rec.Body.String())

	c, rec = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, jsonFail(c, &service.Error{Kind: service.ErrConflict, Message: "Taken."}))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Taken."}`, rec.Body.String())
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderContentType, "application/json; charset=utf-8")
	c, _ := newContext(req)
	assert.True(t, wantsJSON(c))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAccept, "application/json, text/plain")
	c, _ = newContext(req)
	assert.True(t, wantsJSON(c))

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	c, _ = newContext(req)
	assert.False(t, wantsJSON(c))
}

func TestFlashRoundTrip(t *testing.T) {
	c, rec := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	setFlash(c, flashSuccess, `Movie "Heat" has been deleted successfully.`)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	c, rec = newContext(req)
	f := popFlash(c)
	require.NotNil(t, f)
	assert.Equal(t, flashSuccess, f.Kind)
	assert.Equal(t, `Movie "Heat" has been deleted successfully.`, f.Message)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestPopFlashIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "%%%"})
	c, _ := newContext(req)
	assert.Nil(t, popFlash(c))

	c, _ = newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, popFlash(c))
}

func TestParamID(t *testing.T) {
	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, ok := paramID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	for _, v := range []string{"0", "-1", "abc", ""} {
		c.SetParamValues(v)
		_, ok := paramID(c, "id")
		assert.False(t, ok, v)
	}
}

func TestRendererPages(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, name := range []string{"home", "signup", "login", "home_admin", "add_movie", "manage_movies",
		"edit_movie", "manage_reviews", "home_user", "movie_list", "movie_details", "my_reviews",
		"profile", "settings", "submit_review"} {
		_, ok := r.pages[name]
		assert.True(t, ok, name)
	}

	c, _ := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
	var buf bytes.Buffer
	err = r.Render(&buf, "login", page{
		Title: "Log in",
		Error: "Invalid email or password.",
		Flash: &flash{Kind: flashError, Message: "<b>nope</b>"},
		Data:  echo.Map{"email": "jane@example.com"},
	}, c)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "<title>Log in | MovieReview</title>")
	assert.Contains(t, out, `value="jane@example.com"`)
	assert.Contains(t, out, "&lt;b&gt;nope&lt;/b&gt;")
	assert.Contains(t, out, `href="/signup/"`)

	assert.Error(t, r.Render(&buf, "missing", page{}, c))
}

func TestRenderShowsSessionNav(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	e := echo.New()
	e.Renderer = r
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(middleware.SessionKey, &model.Session{AccountID: 1, Kind: model.KindAdmin, Name: "Ada Admin"})

	require.NoError(t, render(c, http.StatusOK, "home_user", "Home", nil, ""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/admin/manage_reviews/")
	assert.Contains(t, rec.Body.String(), "Ada Admin")
}
