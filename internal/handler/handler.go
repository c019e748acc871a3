package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/middleware"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// Guards はルート登録で使うミドルウェアの組。server で組み立てて渡す。
type Guards struct {
	// AuthJWT + TokenVersionGuard
	Auth       []echo.MiddlewareFunc
	Admin      echo.MiddlewareFunc
	SuperAdmin echo.MiddlewareFunc
	// 認証系エンドポイント用の厳しいレート制限
	AuthRateLimit echo.MiddlewareFunc
}

func (g Guards) auth(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(g.Auth)+len(extra))
	out = append(out, g.Auth...)
	for _, m := range extra {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

func getUserIDFromContext(c echo.Context) (int64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bindBody(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return nil
}

func queryInt(c echo.Context, name string) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return n, nil
}

func queryPage(c echo.Context) (int, int, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func queryInt64Ptr(c echo.Context, name string) (*int64, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &n, nil
}

// RFC3339 か YYYY-MM-DD
func queryTimePtr(c echo.Context, name string) (*time.Time, error) {
	t, _, err := parseQueryTime(c, name)
	return t, err
}

// queryEndPtr は期間の上限（含まない）を返す。日付だけなら翌日 0 時にしてその日を含める
func queryEndPtr(c echo.Context, name string) (*time.Time, error) {
	t, dateOnly, err := parseQueryTime(c, name)
	if err != nil || t == nil || !dateOnly {
		return t, err
	}
	end := t.AddDate(0, 0, 1)
	return &end, nil
}

func parseQueryTime(c echo.Context, name string) (*time.Time, bool, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, false, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return nil, false, usecase.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &t, true, nil
}
