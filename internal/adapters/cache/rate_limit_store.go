package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var (
	_ domain.RateLimitStore = (*RedisRateLimitStore)(nil)
	_ domain.RateLimitStore = (*MemoryRateLimitStore)(nil)
)

type RedisRateLimitStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRateLimitStore(rdb *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{rdb: rdb, prefix: "rate_limit:"}
}

func (s *RedisRateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = s.prefix + key

	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			// A key without expiry would block the client forever.
			s.rdb.Del(ctx, key)
			return 0, 0, fmt.Errorf("rate limit expire: %w", err)
		}
		return count, window, nil
	}

	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return count, ttl, nil
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryRateLimitStore is the single-process fallback used when redis is not
// configured. Expired windows are removed by Sweep.
type MemoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

func NewMemoryRateLimitStore(now func() time.Time) *MemoryRateLimitStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryRateLimitStore{
		windows: make(map[string]*memoryWindow),
		now:     now,
	}
}

func (s *MemoryRateLimitStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++

	return w.count, w.resetAt.Sub(now), nil
}

// Sweep drops every window that has already reset.
func (s *MemoryRateLimitStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *MemoryRateLimitStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *MemoryRateLimitStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
