package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore はプロセス内のトークンバケット。
// window あたり limit 回、バーストも limit まで。
type MemoryStore struct {
	limit  int
	window time.Duration
	every  rate.Limit

	mu       sync.Mutex
	visitors map[string]*visitor

	stop chan struct{}
	once sync.Once
	now  func() time.Time
}

func NewMemoryStore(limit int, window time.Duration) *MemoryStore {
	if limit <= 0 {
		limit = 1
	}
	s := &MemoryStore{
		limit:    limit,
		window:   window,
		every:    rate.Every(window / time.Duration(limit)),
		visitors: make(map[string]*visitor),
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go s.sweep()
	return s
}

func (s *MemoryStore) Allow(_ context.Context, key string) (Result, error) {
	now := s.now()

	s.mu.Lock()
	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.every, s.limit)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	allowed := v.limiter.AllowN(now, 1)
	remaining := int(v.limiter.TokensAt(now))
	s.mu.Unlock()

	res := Result{Allowed: allowed, Limit: s.limit, Remaining: max(remaining, 0)}
	if !allowed {
		res.RetryAfter = s.window / time.Duration(s.limit)
	}
	return res, nil
}

// 一定時間来ていない key を捨てる
func (s *MemoryStore) sweep() {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-t.C:
			s.evictIdle(s.now())
		}
	}
}

func (s *MemoryStore) evictIdle(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.visitors {
		if now.Sub(v.lastSeen) > s.window {
			delete(s.visitors, k)
		}
	}
}

func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}
