package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/domain/model"
)

// opener は差し替え可能にしておく（テスト用）
type opener func(dsn string) (*gorm.DB, error)

func openPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Connect はDBに接続して *gorm.DB を返す。
// 設定回数だけリトライし、全部失敗したらフォールバックURLを1回試す。
func Connect(ctx context.Context, cfg config.Config, log *slog.Logger) (*gorm.DB, error) {
	return connect(ctx, cfg, log, openPostgres)
}

func connect(ctx context.Context, cfg config.Config, log *slog.Logger, open opener) (*gorm.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.DBConnectAttempts; attempt++ {
		db, err := tryOpen(ctx, open, cfg.DSN())
		if err == nil {
			log.Info("database connected", slog.Int("attempt", attempt))
			return db, nil
		}
		lastErr = err
		log.Warn("database connect failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", cfg.DBConnectAttempts),
			slog.Any("error", err),
		)
		if attempt == cfg.DBConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.DBConnectDelay):
		}
	}

	if cfg.DatabaseFallbackURL != "" {
		log.Warn("trying fallback database")
		db, err := tryOpen(ctx, open, cfg.DatabaseFallbackURL)
		if err == nil {
			log.Info("fallback database connected")
			return db, nil
		}
		lastErr = errors.Join(lastErr, fmt.Errorf("fallback: %w", err))
	}
	return nil, fmt.Errorf("db connect: %w", lastErr)
}

func tryOpen(ctx context.Context, open opener, dsn string) (*gorm.DB, error) {
	db, err := open(dsn)
	if err != nil {
		return nil, err
	}
	if err := Ping(ctx, db); err != nil {
		if sqlDB, e := db.DB(); e == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return db, nil
}

// Ping は接続確認（/health と DB ガードで使う）
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("db not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Migrate はテーブルを作成・更新する。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close は接続を閉じる。
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
