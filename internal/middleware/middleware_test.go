package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/ratelimit"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/logger"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/metrics"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

// =====================
// UserRepository モック
// =====================

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) List(ctx context.Context, f repository.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	u, _ := args.Get(0).([]model.User)
	return u, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	u, _ := args.Get(0).([]model.User)
	return u, args.Error(1)
}

func (m *MockUserRepo) IncrementTokenVersion(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepo) RecordOrder(ctx context.Context, id int64, total decimal.Decimal) error {
	return m.Called(ctx, id, total).Error(0)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

// =====================
// helper
// =====================

const secret = "test-secret"

func mustMakeJWT(t *testing.T, key string, sub int64, role string, tv int, method jwt.SigningMethod) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"tv":   tv,
		"iat":  1,
		"exp":  9999999999,
	})
	s, err := tok.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func runRequest(e *echo.Echo, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var r errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&r))
	return r
}

func ok(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"user_id": c.Get(CtxUserIDKey),
		"role":    c.Get(CtxUserRoleKey),
		"tv":      c.Get(CtxTokenVersionKey),
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"bad scheme", "Token abc.def.ghi"},
		{"empty token", "Bearer  "},
		{"bad signature", "Bearer " + mustMakeJWT(t, "wrong-secret", 1, "customer", 0, jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, secret, 1, "customer", 0, jwt.SigningMethodHS512)},
		{"unknown role", "Bearer " + mustMakeJWT(t, secret, 1, "USER", 0, jwt.SigningMethodHS256)},
		{"no user", "Bearer " + mustMakeJWT(t, secret, 0, "customer", 0, jwt.SigningMethodHS256)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			e.GET("/protected", ok, AuthJWT(secret))

			rec := runRequest(e, http.MethodGet, "/protected", tc.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, "unauthorized", body.Message)
		})
	}
}

func TestAuthJWT_SetsContext(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		id, ok := UserID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(123), id)
		assert.Equal(t, model.RoleAdmin, Role(c))
		assert.Equal(t, 7, c.Get(CtxTokenVersionKey))
		return c.NoContent(http.StatusOK)
	}, AuthJWT(secret))

	rec := runRequest(e, http.MethodGet, "/protected", "Bearer "+mustMakeJWT(t, secret, 123, "admin", 7, jwt.SigningMethodHS256))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// TokenVersionGuard
// =====================

func guardedEcho(users repository.UserRepository) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		_ = c.JSON(http.StatusServiceUnavailable, errorJSON(err.Error()))
	}
	e.GET("/me", func(c echo.Context) error {
		return c.String(http.StatusOK, string(Role(c)))
	}, AuthJWT(secret), TokenVersionGuard(users))
	return e
}

func TestTokenVersionGuard(t *testing.T) {
	token := "Bearer " + mustMakeJWT(t, secret, 5, "customer", 2, jwt.SigningMethodHS256)

	t.Run("match uses db role", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, TokenVersion: 2, IsActive: true, Role: model.RoleAdmin}, nil)

		rec := runRequest(guardedEcho(users), http.MethodGet, "/me", token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", rec.Body.String())
	})

	t.Run("version mismatch", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, TokenVersion: 3, IsActive: true}, nil)

		rec := runRequest(guardedEcho(users), http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("FindByID", mock.Anything, int64(5)).Return(&model.User{ID: 5, TokenVersion: 2, IsActive: false}, nil)

		rec := runRequest(guardedEcho(users), http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("FindByID", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound)

		rec := runRequest(guardedEcho(users), http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("db error goes to error handler", func(t *testing.T) {
		users := new(MockUserRepo)
		users.On("FindByID", mock.Anything, int64(5)).Return(nil, errors.New("connection refused"))

		rec := runRequest(guardedEcho(users), http.MethodGet, "/me", token)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// =====================
// RequireRoles
// =====================

func TestRequireRoles(t *testing.T) {
	withRole := func(r model.Role) echo.MiddlewareFunc {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if r != "" {
					c.Set(CtxUserRoleKey, r)
				}
				return next(c)
			}
		}
	}

	cases := []struct {
		role model.Role
		want int
	}{
		{model.RoleSuperAdmin, http.StatusOK},
		{model.RoleAdmin, http.StatusOK},
		{model.RoleCustomer, http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		e := echo.New()
		e.GET("/admin", ok, withRole(tc.role), RequireRoles(model.RoleAdmin, model.RoleSuperAdmin))

		rec := runRequest(e, http.MethodGet, "/admin", "")
		assert.Equal(t, tc.want, rec.Code, "role=%q", tc.role)
	}
}

// =====================
// DBReady
// =====================

func TestDBReady(t *testing.T) {
	e := echo.New()
	down := true
	e.GET("/x", ok, DBReady(func(context.Context) error {
		if down {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	}))

	rec := runRequest(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unavailable", decodeError(t, rec).Message)

	down = false
	rec = runRequest(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// RateLimit
// =====================

type failingStore struct{}

func (failingStore) Allow(context.Context, string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	store := ratelimit.NewMemoryStore(2, time.Minute)
	defer store.Close()
	m := metrics.New()

	e := echo.New()
	e.GET("/x", ok, RateLimit(store, "auth", m, quietLogger()))

	for i := 0; i < 2; i++ {
		rec := runRequest(e, http.MethodGet, "/x", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := runRequest(e, http.MethodGet, "/x", "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimited.WithLabelValues("auth")))
}

func TestRateLimit_FailOpen(t *testing.T) {
	e := echo.New()
	e.GET("/x", ok, RateLimit(failingStore{}, "api", nil, quietLogger()))

	rec := runRequest(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// =====================
// RequestLogger / Metrics
// =====================

func TestRequestLogger_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return "req-42" }}))
	e.Use(RequestLogger(base))
	e.GET("/x", func(c echo.Context) error {
		logger.FromContext(c.Request().Context(), nil).Info("inside handler")
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := runRequest(e, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))
	assert.Equal(t, "req-42", inner["request_id"])
	assert.Equal(t, "request", access["msg"])
	assert.Equal(t, "WARN", access["level"])
	assert.Equal(t, float64(404), access["status"])
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	m := metrics.New()
	e := echo.New()
	e.Use(Metrics(m))
	e.GET("/api/orders/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	runRequest(e, http.MethodGet, "/api/orders/12", "")
	runRequest(e, http.MethodGet, "/api/orders/13", "")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/api/orders/:id", "204")))
}
