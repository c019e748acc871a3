// Package logger は log/slog のロガーを組み立てる。
// 本番は JSON、開発はテキスト。LOG_MONGO_URI があれば MongoDB にも流す。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type Options struct {
	Production bool
	Level      slog.Level
	Output     io.Writer

	MongoURI        string
	MongoDB         string
	MongoCollection string
}

// New はロガーと、終了時に呼ぶ close を返す。
// Mongo に繋がらない場合は標準出力だけで続ける（警告を出す）。
func New(ctx context.Context, opts Options) (*slog.Logger, func(context.Context) error) {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	level := opts.Level
	if !opts.Production && level == slog.LevelInfo {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{Level: level}
	var base slog.Handler
	if opts.Production {
		base = slog.NewJSONHandler(opts.Output, hopts)
	} else {
		base = slog.NewTextHandler(opts.Output, hopts)
	}

	noop := func(context.Context) error { return nil }
	if opts.MongoURI == "" {
		return slog.New(base), noop
	}

	mh, err := NewMongoHandler(ctx, opts.MongoURI, opts.MongoDB, opts.MongoCollection, level)
	if err != nil {
		log := slog.New(base)
		log.Warn("mongo log sink disabled", slog.Any("error", err))
		return log, noop
	}
	return slog.New(NewMultiHandler(base, mh)), mh.Close
}

type ctxKey struct{}

// WithContext はリクエスト用ロガー（request_id 付き）を ctx に入れる。
func WithContext(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext は ctx のロガーを返す。無ければ fallback。
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
