package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/handler"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/db"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/export"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/imaging"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/invoice"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/mail"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/ratelimit"
	infraRepo "github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/repository"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/security"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/storage"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/metrics"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/numbering"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/pkg/pricing"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/server"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/usecase"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/validator"
)

const (
	bcryptCost   = 12
	mailQueueLen = 256
	shopName     = "Last Piece"
)

var migrateOnServe bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := boot(ctx)
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = a.close(closeCtx)
		}()

		if migrateOnServe {
			if err := db.Migrate(a.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}

		e, err := buildServer(ctx, a)
		if err != nil {
			return err
		}
		return server.Run(ctx, e, ":"+strings.TrimPrefix(a.cfg.Port, ":"), a.log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnServe, "migrate", false, "run auto-migration before serving")
}

// buildServer は repository → infra → usecase → handler の順に組み立てる。
func buildServer(ctx context.Context, a *app) (*echo.Echo, error) {
	cfg := a.cfg
	gdb := a.db
	ping := func(ctx context.Context) error { return db.Ping(ctx, gdb) }

	//Repository（GORM実装）
	userRepo := infraRepo.NewUserGormRepository(gdb)
	rtRepo := infraRepo.NewRefreshTokenRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	categoryRepo := infraRepo.NewCategoryGormRepository(gdb)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	reviewRepo := infraRepo.NewReviewGormRepository(gdb)
	reportRepo := infraRepo.NewReportGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	txm := infraRepo.NewTxManagerGorm(gdb)

	//infra
	disk, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	notifier := mail.NewNotifier(mail.NewSender(cfg.SMTP, a.log), a.log, mailQueueLen)
	a.onClose("mail", notifier.Close)

	limiter, authLimiter := newRateLimiters(ctx, a)

	m := metrics.New()
	clock := usecase.SystemClock{}
	numbers := numbering.New()
	coupons := pricing.NewFlatRatePolicy()

	//Usecase
	authUC := usecase.NewAuthUsecase(usecase.AuthDeps{
		Users:     userRepo,
		Tokens:    rtRepo,
		Validator: validator.NewAuthValidator(userRepo),
		Hasher:    security.NewBcryptPasswordHasher(bcryptCost),
		Issuer:    security.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTTL),
		IDs:       security.UUIDGenerator{},
		Notifier:  notifier,
		Clock:     clock,
		Options: usecase.AuthOptions{
			RefreshTTL:         cfg.RefreshTTL,
			LockoutMaxAttempts: cfg.LockoutMaxAttempts,
			LockoutDuration:    cfg.LockoutDuration,
		},
		Logger: a.log,
	})
	productUC := usecase.NewProductUsecase(usecase.ProductDeps{
		Products:   productRepo,
		Categories: categoryRepo,
		Inventory:  inventoryRepo,
		AuditLogs:  auditRepo,
		SKUs:       numbers,
		Storage:    disk,
		Images:     imaging.NewThumbnailer(),
		Clock:      clock,
	})
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, coupons, clock)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo, cartUC)
	reviewUC := usecase.NewReviewUsecase(usecase.ReviewDeps{
		Reviews:   reviewRepo,
		Products:  productRepo,
		Users:     userRepo,
		AuditLogs: auditRepo,
		Clock:     clock,
		Logger:    a.log,
	})
	orderUC := usecase.NewOrderUsecase(usecase.OrderDeps{
		Tx:       txm,
		Orders:   orderRepo,
		Users:    userRepo,
		Coupons:  coupons,
		Numbers:  numbers,
		Notifier: notifier,
		Invoices: invoice.NewPDFRenderer(shopName),
		Clock:    clock,
		Logger:   a.log,
	})
	adminOrderUC := usecase.NewAdminOrderUsecase(usecase.AdminOrderDeps{
		Tx:                txm,
		Orders:            orderRepo,
		Users:             userRepo,
		Notifier:          notifier,
		Clock:             clock,
		StrictTransitions: cfg.StrictOrderTransitions,
		Logger:            a.log,
	})
	adminUC := usecase.NewAdminUsecase(usecase.AdminDeps{
		Reports:   reportRepo,
		Orders:    orderRepo,
		Users:     userRepo,
		Products:  productRepo,
		AuditLogs: auditRepo,
		Exporter:  export.NewXLSXExporter(),
		Settings:  effectiveSettings(cfg, coupons),
		Clock:     clock,
	})

	//Handler
	h := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Category:     handler.NewCategoryHandler(categoryUC),
		Cart:         handler.NewCartHandler(cartUC),
		Wishlist:     handler.NewWishlistHandler(wishlistUC),
		Review:       handler.NewReviewHandler(reviewUC),
		Order:        handler.NewOrderHandler(orderUC, m),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		Admin:        handler.NewAdminHandler(adminUC),
		AdminUser:    handler.NewAdminUserHandler(adminUC, authUC),
	}

	deps := server.Deps{
		Config:      cfg,
		Logger:      a.log,
		Metrics:     m,
		Ping:        ping,
		Users:       userRepo,
		Limiter:     limiter,
		AuthLimiter: authLimiter,
		Handlers:    h,
	}
	if cfg.Storage.Driver == "local" && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		deps.StaticPrefix = cfg.Storage.PublicURL
		deps.StaticRoot = cfg.Storage.LocalRoot
	}
	return server.New(deps), nil
}

// REDIS_ADDR があれば redis で数える（複数台で共有）。繋がらなければメモリに戻す
func newRateLimiters(ctx context.Context, a *app) (ratelimit.Store, ratelimit.Store) {
	cfg := a.cfg
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			a.onClose("redis", func(context.Context) error { return rdb.Close() })
			return ratelimit.NewRedisStore(rdb, "rl:api", cfg.RateLimitRequests, cfg.RateLimitWindow),
				ratelimit.NewRedisStore(rdb, "rl:auth", cfg.AuthRateLimitRequests, cfg.RateLimitWindow)
		}
		a.log.Warn("redis unavailable, using in-memory rate limit", "addr", cfg.RedisAddr, "err", err)
		_ = rdb.Close()
	}

	api := ratelimit.NewMemoryStore(cfg.RateLimitRequests, cfg.RateLimitWindow)
	auth := ratelimit.NewMemoryStore(cfg.AuthRateLimitRequests, cfg.RateLimitWindow)
	a.onClose("ratelimit", func(context.Context) error {
		api.Close()
		auth.Close()
		return nil
	})
	return api, auth
}

// 秘密情報は含めない
func effectiveSettings(cfg config.Config, coupons pricing.FlatRatePolicy) usecase.Settings {
	store := "memory"
	if cfg.RedisAddr != "" {
		store = "redis"
	}
	return usecase.Settings{
		Environment:           cfg.GoEnv,
		TaxRate:               pricing.TaxRate,
		CouponRate:            coupons.Rate,
		RateLimitRequests:     cfg.RateLimitRequests,
		RateLimitWindow:       cfg.RateLimitWindow.String(),
		AuthRateLimitRequests: cfg.AuthRateLimitRequests,
		RateLimitStore:        store,
		StrictTransitions:     cfg.StrictOrderTransitions,
		StorageDriver:         cfg.Storage.Driver,
		AccessTokenTTL:        cfg.AccessTTL.String(),
		RefreshTokenTTL:       cfg.RefreshTTL.String(),
		LockoutMaxAttempts:    cfg.LockoutMaxAttempts,
		LockoutDuration:       cfg.LockoutDuration.String(),
		MailEnabled:           cfg.SMTP.Enabled(),
	}
}
