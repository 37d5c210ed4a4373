package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-review/internal/config"
	"github.com/iliyamo/movie-review/internal/database"
	"github.com/iliyamo/movie-review/internal/model"
	"github.com/iliyamo/movie-review/internal/repository"
	"github.com/iliyamo/movie-review/internal/session"
	"github.com/iliyamo/movie-review/internal/utils"
)

const testSecret = "test-secret"

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite))
	return session.NewManager(session.NewSQLStore(repository.NewSessionRepo(db)), time.Hour, false)
}

// newServer mounts a probe handler behind LoadSession and the given gate.
func newServer(mgr *session.Manager, gate echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.Use(LoadSession(mgr, testSecret))
	e.GET("/probe", func(c echo.Context) error {
		s, ok := CurrentSession(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.String(http.StatusOK, string(s.Kind)+":"+s.Name)
	}, gate)
	return e
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestLoadSessionFromCookie(t *testing.T) {
	mgr := newManager(t)
	e := newServer(mgr, passThrough)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login/", nil), rec)
	_, err := mgr.Open(c, &model.Account{ID: 1, Kind: model.KindUser, Role: "user", FirstName: "Jo", LastName: "March"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "user:Jo March", rec.Body.String())
}

func TestLoadSessionFromBearer(t *testing.T) {
	e := newServer(newManager(t), passThrough)
	tok, err := utils.NewAccessToken(testSecret, utils.Claims{AccountID: 2, Kind: "admin", Role: "admin", Name: "Ann Admin"}, 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "admin:Ann Admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireKind(t *testing.T) {
	mgr := newManager(t)
	userTok, err := utils.NewAccessToken(testSecret, utils.Claims{AccountID: 3, Kind: "user", Role: "user", Name: "U"}, 5)
	require.NoError(t, err)

	t.Run("page redirects anonymous callers to login", func(t *testing.T) {
		e := newServer(mgr, RequireKind(model.KindAdmin, false))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, LoginPath, rec.Header().Get("Location"))
	})

	t.Run("api rejects the wrong kind with 403 json", func(t *testing.T) {
		e := newServer(mgr, RequireKind(model.KindAdmin, true))
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+userTok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Unauthorized access."}`, rec.Body.String())
	})

	t.Run("matching kind passes", func(t *testing.T) {
		e := newServer(mgr, RequireKind(model.KindUser, false))
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+userTok.Token)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user:U", rec.Body.String())
	})
}

func TestDisabledLimiterAndCachePassThrough(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }
	e.POST("/login/", h, NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, nil))
	e.GET("/get_movies/", h, NewRedisCache(config.CacheConfig{Enabled: true}, nil))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/get_movies/", nil))
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
	assert.Equal(t, 6, calls)
}

func TestDenyJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/login/", nil), rec)
	require.NoError(t, DenyJSON(c, 7))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Too many attempts. Please try again later.","retry_after":7}`, rec.Body.String())
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1,2]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `[1,2]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestRateAndCacheKeys(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/login/?next=x", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/login/")

	key := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_route"}, c)
	assert.Equal(t, "rl:ip:10.0.0.1:route:POST /login/", key)

	c.Set(SessionKey, &model.Session{AccountID: 4, Kind: model.KindUser})
	key = buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}, c)
	assert.Equal(t, "rl:user:user-4", key)

	a := cacheKeyFrom(config.CacheConfig{Prefix: "cache"}, c)
	c.Request().URL.RawQuery = "next=y"
	b := cacheKeyFrom(config.CacheConfig{Prefix: "cache"}, c)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a[:6], "cache:")
}
