package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var (
	_ domain.MagicLinkStore = (*RedisMagicLinkStore)(nil)
	_ domain.MagicLinkStore = (*MemoryMagicLinkStore)(nil)
)

type RedisMagicLinkStore struct {
	rdb *redis.Client
}

func NewRedisMagicLinkStore(rdb *redis.Client) *RedisMagicLinkStore {
	return &RedisMagicLinkStore{rdb: rdb}
}

func (s *RedisMagicLinkStore) key(tokenHash string) string {
	return "magic_link:" + tokenHash
}

func (s *RedisMagicLinkStore) Save(ctx context.Context, tokenHash, email string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, s.key(tokenHash), email, ttl).Err(); err != nil {
		return fmt.Errorf("magic link save: %w", err)
	}
	return nil
}

// Consume uses GETDEL so two concurrent verifications cannot both succeed.
func (s *RedisMagicLinkStore) Consume(ctx context.Context, tokenHash string) (string, error) {
	email, err := s.rdb.GetDel(ctx, s.key(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrMagicLinkInvalid
	}
	if err != nil {
		return "", fmt.Errorf("magic link consume: %w", err)
	}
	return email, nil
}

type pendingLink struct {
	email     string
	expiresAt time.Time
}

type MemoryMagicLinkStore struct {
	mu    sync.Mutex
	links map[string]pendingLink
	now   func() time.Time
}

func NewMemoryMagicLinkStore(now func() time.Time) *MemoryMagicLinkStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryMagicLinkStore{
		links: make(map[string]pendingLink),
		now:   now,
	}
}

func (s *MemoryMagicLinkStore) Save(_ context.Context, tokenHash, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, l := range s.links {
		if !now.Before(l.expiresAt) {
			delete(s.links, k)
		}
	}

	s.links[tokenHash] = pendingLink{email: email, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryMagicLinkStore) Consume(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.links[tokenHash]
	if !ok {
		return "", domain.ErrMagicLinkInvalid
	}
	delete(s.links, tokenHash)

	if !s.now().Before(l.expiresAt) {
		return "", domain.ErrMagicLinkInvalid
	}
	return l.email, nil
}
