package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/handler"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/ratelimit"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/metrics"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/middleware"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/repository"
)

const (
	bodyLimit       = "10M"
	shutdownTimeout = 15 * time.Second
)

// Deps は echo を組み立てるのに必要なもの。cmd/api で作って渡す。
type Deps struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// DB 疎通確認（/health と DBReady）
	Ping  func(ctx context.Context) error
	Users repository.UserRepository

	Limiter     ratelimit.Store
	AuthLimiter ratelimit.Store

	// ローカルストレージの公開パスと実ディレクトリ。空なら配信しない
	StaticPrefix string
	StaticRoot   string

	Handlers Handlers
}

// New はミドルウェアとルートを登録した echo を返す。
// Recover → RequestID → RequestLogger → Metrics → CORS → RateLimit → DBReady → 認証 → ロール
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(d.Config.IsProduction(), d.Logger)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		e.Use(middleware.Metrics(d.Metrics))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.Config.FEURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(bodyLimit))

	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}
	if d.StaticPrefix != "" && d.StaticRoot != "" {
		e.Static(d.StaticPrefix, d.StaticRoot)
	}

	api := e.Group("/api")
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, "api", d.Metrics, d.Logger))
	}
	api.Use(middleware.DBReady(d.Ping))

	guards := handler.Guards{
		Auth: []echo.MiddlewareFunc{
			middleware.AuthJWT(d.Config.JWTSecret),
			middleware.TokenVersionGuard(d.Users),
		},
		Admin:      middleware.RequireRoles(model.RoleAdmin, model.RoleSuperAdmin),
		SuperAdmin: middleware.RequireRoles(model.RoleSuperAdmin),
	}
	if d.AuthLimiter != nil {
		guards.AuthRateLimit = middleware.RateLimit(d.AuthLimiter, "auth", d.Metrics, d.Logger)
	}

	registerRoutes(e, api, guards, d.Handlers, d.Ping)
	return e
}

// Run は ctx が終わるまで待ち受け、終わったら新規受付を止めて処理中のリクエストを待つ。
func Run(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
