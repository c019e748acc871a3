package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DB に繋がらない間は 503 を返す。
func DBReady(ping func(ctx context.Context) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, errorJSON("database unavailable"))
			}
			return next(c)
		}
	}
}
