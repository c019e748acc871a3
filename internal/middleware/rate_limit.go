package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/ratelimit"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/logger"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/metrics"
)

// RateLimit はクライアントIPごとに数える。bucket はメトリクスのラベル。
// カウンタが落ちているときは通す（ログだけ残す）。
func RateLimit(store ratelimit.Store, bucket string, m *metrics.Metrics, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			res, err := store.Allow(ctx, bucket+":"+c.RealIP())
			if err != nil {
				logger.FromContext(ctx, log).WarnContext(ctx, "rate limit store failed", slog.String("bucket", bucket), slog.Any("error", err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			if !res.Allowed {
				if m != nil {
					m.RateLimited.WithLabelValues(bucket).Inc()
				}
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				return c.JSON(http.StatusTooManyRequests, errorJSON("too many requests, please try again later"))
			}
			return next(c)
		}
	}
}
