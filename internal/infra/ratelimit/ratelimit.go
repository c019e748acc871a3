// Package ratelimit はIP単位のリクエスト数制限のカウンタ。
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Store は key ごとに1リクエスト分を数える。
type Store interface {
	Allow(ctx context.Context, key string) (Result, error)
}
