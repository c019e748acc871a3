package handler

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/logger"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pagination"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
)

// 全APIで共通のレスポンス形式
type Response struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	// 本番以外のみ
	Stack string `json:"stack,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, Response{Success: true, Data: data})
}

func respondMessage(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondPage(c echo.Context, data any, meta pagination.Meta) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &meta})
}

// ErrorHandler は handler が返したエラーをエンベロープに変換する。
// DB接続断は 503、usecase.HTTPError はその status、それ以外は 500。
func ErrorHandler(production bool, base *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)
		log := logger.FromContext(c.Request().Context(), base)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "err", err, "status", status, "path", c.Path())
		}

		body := Response{Success: false, Message: message}
		if !production && status >= http.StatusInternalServerError {
			body.Stack = fmt.Sprintf("%v\n%s", err, debug.Stack())
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			log.Error("write error response", "err", werr)
		}
	}
}

func classify(err error) (int, string) {
	if isDBUnavailable(err) {
		return http.StatusServiceUnavailable, "database unavailable"
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		if he.Status >= http.StatusInternalServerError {
			return he.Status, "internal server error"
		}
		return he.Status, he.Message
	}
	var ee *echo.HTTPError
	if errors.As(err, &ee) {
		if msg, ok := ee.Message.(string); ok {
			return ee.Code, msg
		}
		return ee.Code, http.StatusText(ee.Code)
	}
	return http.StatusInternalServerError, "internal server error"
}

func isDBUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused")
}
