package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 初回だけ期限を付ける固定ウィンドウ。{count, pttl} を返す。
var incrWindow = redis.NewScript(`
local c = redis.call('INCR', KEYS[1])
if c == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {c, redis.call('PTTL', KEYS[1])}
`)

// RedisStore は固定ウィンドウのカウンタ。複数インスタンスで同じ上限を共有する。
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisStore(rdb redis.Scripter, prefix string, limit int, window time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (Result, error) {
	k := fmt.Sprintf("%s:%s", s.prefix, key)

	vals, err := incrWindow.Run(ctx, s.rdb, []string{k}, s.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit/redis: %w", err)
	}
	if len(vals) != 2 {
		return Result{}, fmt.Errorf("ratelimit/redis: unexpected reply %v", vals)
	}

	count := int(vals[0])
	res := Result{
		Allowed:   count <= s.limit,
		Limit:     s.limit,
		Remaining: max(s.limit-count, 0),
	}
	if !res.Allowed {
		res.RetryAfter = time.Duration(vals[1]) * time.Millisecond
		if res.RetryAfter <= 0 {
			res.RetryAfter = s.window
		}
	}
	return res, nil
}
