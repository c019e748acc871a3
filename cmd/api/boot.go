package main

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/config"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/infra/db"
	"github.com/mohameddzaher/last-Piece-e-commerce-sub000/internal/logger"
)

// 終了時に逆順で閉じるもの
type closer struct {
	name string
	fn   func(ctx context.Context) error
}

type app struct {
	cfg     config.Config
	log     *slog.Logger
	db      *gorm.DB
	closers []closer
}

// boot は設定・ロガー・DB を用意する。全コマンド共通
func boot(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, closeLog := logger.New(ctx, logger.Options{
		Production:      cfg.IsProduction(),
		Level:           slog.LevelInfo,
		MongoURI:        cfg.LogMongoURI,
		MongoDB:         cfg.LogMongoDB,
		MongoCollection: cfg.LogMongoCollection,
	})
	slog.SetDefault(log)

	a := &app{cfg: cfg, log: log}
	a.onClose("logger", closeLog)

	gdb, err := db.Connect(ctx, cfg, log)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.db = gdb
	a.onClose("database", func(context.Context) error { return db.Close(gdb) })

	return a, nil
}

func (a *app) onClose(name string, fn func(ctx context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// close は登録と逆順に閉じる。ロガーは最後
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(ctx); err != nil {
			a.log.Error("close failed", "component", c.name, "err", err)
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
