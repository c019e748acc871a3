package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/middleware"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pricing"
	repo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

type mockCategoryRepo struct{ mock.Mock }

func (m *mockCategoryRepo) List(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id int64) (model.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Category), args.Error(1)
}

func (m *mockCategoryRepo) Create(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryRepo) Update(ctx context.Context, c *model.Category) error {
	return m.Called(ctx, c).Error(0)
}

type mockCartRepo struct{ mock.Mock }

func (m *mockCartRepo) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *mockCartRepo) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *mockCartRepo) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *mockCartRepo) Save(ctx context.Context, cart *model.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]model.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepo) FindBySlug(ctx context.Context, slug string) (model.Product, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepo) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) Update(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockProductRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) UpdateRating(ctx context.Context, productID int64, average decimal.Decimal, count int64) error {
	return m.Called(ctx, productID, average, count).Error(0)
}

func (m *mockProductRepo) UpdateImages(ctx context.Context, productID int64, imageURL, thumbnailURL string) error {
	return m.Called(ctx, productID, imageURL, thumbnailURL).Error(0)
}

// X-User-ID / X-User-Role ヘッダーを認証済みユーザーとして扱う
func fakeAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Request().Header.Get("X-User-ID"), 10, 64)
		if err != nil {
			return usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		c.Set(middleware.CtxUserIDKey, id)
		c.Set(middleware.CtxUserRoleKey, model.Role(c.Request().Header.Get("X-User-Role")))
		return next(c)
	}
}

func testGuards() Guards {
	return Guards{
		Auth:       []echo.MiddlewareFunc{fakeAuth},
		Admin:      middleware.RequireRoles(model.RoleAdmin, model.RoleSuperAdmin),
		SuperAdmin: middleware.RequireRoles(model.RoleSuperAdmin),
	}
}

func newTestEcho(production bool) (*echo.Echo, *echo.Group) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(production, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return e, e.Group("/api")
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int   `json:"page"`
		Total int64 `json:"total"`
	} `json:"pagination"`
	Stack string `json:"stack"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func customer(id int64) map[string]string {
	return map[string]string{"X-User-ID": strconv.FormatInt(id, 10), "X-User-Role": string(model.RoleCustomer)}
}

func admin(id int64) map[string]string {
	return map[string]string{"X-User-ID": strconv.FormatInt(id, 10), "X-User-Role": string(model.RoleAdmin)}
}

func TestErrorHandler_Classify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"usecase 404", usecase.NewHTTPError(http.StatusNotFound, "order not found"), http.StatusNotFound, "order not found"},
		{"usecase 423", usecase.NewHTTPError(http.StatusLocked, "account locked"), http.StatusLocked, "account locked"},
		{"echo 404", echo.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"pg connect", &usecase.HTTPError{Status: 500, Message: "db error", Err: &pgconn.ConnectError{}}, http.StatusServiceUnavailable, "database unavailable"},
		{"net op", &net.OpError{Op: "dial", Err: errors.New("i/o timeout")}, http.StatusServiceUnavailable, "database unavailable"},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), http.StatusServiceUnavailable, "database unavailable"},
		{"usecase 500 hides detail", &usecase.HTTPError{Status: 500, Message: "db error", Err: errors.New("syntax error")}, http.StatusInternalServerError, "internal server error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, msg)
		})
	}
}

func TestErrorHandler_StackOnlyOutsideProduction(t *testing.T) {
	for _, production := range []bool{false, true} {
		e, _ := newTestEcho(production)
		e.GET("/boom", func(c echo.Context) error { return errors.New("boom") })

		rec, env := do(t, e, http.MethodGet, "/boom", "", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, env.Success)
		if production {
			assert.Empty(t, env.Stack)
		} else {
			assert.Contains(t, env.Stack, "boom")
		}
	}
}

func TestCategoryHandler_ListAndAdminCreate(t *testing.T) {
	e, api := newTestEcho(true)
	categories := new(mockCategoryRepo)
	NewCategoryHandler(usecase.NewCategoryUsecase(categories)).RegisterRoutes(api, testGuards())

	categories.On("List", mock.Anything, true).Return([]model.Category{{ID: 1, Name: "Sneakers", Slug: "sneakers", IsActive: true}}, nil)

	rec, env := do(t, e, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"slug":"sneakers"`)

	// 顧客は 403
	rec, env = do(t, e, http.MethodPost, "/api/admin/categories", `{"name":"Boots"}`, customer(2))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, env.Success)

	// 未ログインは 401
	rec, _ = do(t, e, http.MethodPost, "/api/admin/categories", `{"name":"Boots"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	categories.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Category) bool {
		return c.Slug == "boots" && c.IsActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Category).ID = 5
	}).Return(nil).Once()

	rec, env = do(t, e, http.MethodPost, "/api/admin/categories", `{"name":"Boots"}`, admin(9))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, string(env.Data), `"id":5`)

	categories.On("Create", mock.Anything, mock.Anything).Return(repo.ErrDuplicate).Once()
	rec, env = do(t, e, http.MethodPost, "/api/admin/categories", `{"name":"Boots"}`, admin(9))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "category already exists", env.Message)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newCartEcho() (*echo.Echo, *mockCartRepo, *mockProductRepo) {
	e, api := newTestEcho(true)
	carts := new(mockCartRepo)
	products := new(mockProductRepo)
	uc := usecase.NewCartUsecase(carts, products, pricing.NewFlatRatePolicy(), fixedClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	NewCartHandler(uc).RegisterRoutes(api, testGuards())
	return e, carts, products
}

func TestCartHandler_Add(t *testing.T) {
	e, carts, products := newCartEcho()

	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID:     10,
		Name:   "Jordan 1 Chicago",
		Price:  decimal.RequireFromString("150.00"),
		Stock:  1,
		Status: model.ProductStatusActive,
	}, nil)
	carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 7, UserID: 1}, nil)
	carts.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	rec, env := do(t, e, http.MethodPost, "/api/cart/add", `{"productId":10,"quantity":1}`, customer(1))

	require.Equal(t, http.StatusOK, rec.Code)
	var cart struct {
		Total decimal.Decimal `json:"total"`
		Items []struct {
			ProductID int64 `json:"productId"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("165")), cart.Total.String())
	require.Len(t, cart.Items, 1)

	// 在庫1の一点物に2個は 400
	rec, env = do(t, e, http.MethodPost, "/api/cart/add", `{"productId":10,"quantity":2}`, customer(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "insufficient stock", env.Message)
	carts.AssertNumberOfCalls(t, "Save", 1)
}

func TestCartHandler_Errors(t *testing.T) {
	e, carts, _ := newCartEcho()

	rec, env := do(t, e, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", env.Message)

	rec, env = do(t, e, http.MethodPost, "/api/cart/add", `{"productId":`, customer(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid body", env.Message)

	carts.On("GetOrCreateByUserID", mock.Anything, int64(1)).
		Return(model.Cart{}, &net.OpError{Op: "dial", Err: errors.New("connection refused")})
	rec, env = do(t, e, http.MethodGet, "/api/cart", "", customer(1))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unavailable", env.Message)
}

func TestHealthHandler(t *testing.T) {
	e := echo.New()
	var pingErr error
	NewHealthHandler(func(context.Context) error { return pingErr }).RegisterRoutes(e)

	rec, env := do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"database":"up"`)

	pingErr = errors.New("down")
	rec, env = do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unavailable", env.Message)
}

func TestParamAndQueryHelpers(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=2&limit=x&from=2026-01-31&user_id=-1", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	_, err := paramID(c, "id")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	page, err := queryInt(c, "page")
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	_, _, err = queryPage(c)
	assert.ErrorIs(t, err, usecase.ErrValidation)

	from, err := queryTimePtr(c, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *from)

	// 日付だけの上限はその日を含める
	end, err := queryEndPtr(c, "from")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *end)

	_, err = queryInt64Ptr(c, "user_id")
	assert.ErrorIs(t, err, usecase.ErrValidation)

	req = httptest.NewRequest(http.MethodGet, "/?to=2026-01-31T12:00:00Z", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	end, err = queryEndPtr(c, "to")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC), *end)
}
