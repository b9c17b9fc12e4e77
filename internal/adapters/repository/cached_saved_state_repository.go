package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ domain.SavedStateRepository = (*CachedSavedStateRepository)(nil)

const savedStatesCacheTTL = 30 * time.Minute

// CachedSavedStateRepository caches each user's list in redis. Writes go to
// the wrapped repository first and then drop the user's entry.
type CachedSavedStateRepository struct {
	next   domain.SavedStateRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewCachedSavedStateRepository(next domain.SavedStateRepository, cache *redis.Client, logger *zap.Logger) *CachedSavedStateRepository {
	return &CachedSavedStateRepository{
		next:   next,
		cache:  cache,
		logger: logger.Named("saved_state_cache"),
	}
}

func (r *CachedSavedStateRepository) cacheKey(userID string) string {
	return fmt.Sprintf("saved_states:%s", userID)
}

func (r *CachedSavedStateRepository) invalidate(ctx context.Context, userID string) {
	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		r.logger.Warn("failed to invalidate", zap.String("user_id", userID), zap.Error(err))
	}
}

// cachedState carries the owner, which SavedState hides from JSON.
type cachedState struct {
	*domain.SavedState
	UserID string `json:"userId"`
}

func (r *CachedSavedStateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.SavedState, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var cached []cachedState
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			states := make([]*domain.SavedState, 0, len(cached))
			for _, c := range cached {
				c.SavedState.UserID = c.UserID
				states = append(states, c.SavedState)
			}
			return states, nil
		}

		r.logger.Warn("corrupted cache entry, cleaning up key", zap.String("user_id", userID))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("redis read error", zap.Error(err))
	}

	states, err := r.next.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cached := make([]cachedState, 0, len(states))
	for _, s := range states {
		cached = append(cached, cachedState{SavedState: s, UserID: s.UserID})
	}

	if data, err := json.Marshal(cached); err == nil {
		if setErr := r.cache.Set(ctx, key, data, savedStatesCacheTTL).Err(); setErr != nil {
			r.logger.Warn("redis set error", zap.Error(setErr))
		}
	}

	return states, nil
}

func (r *CachedSavedStateRepository) GetByID(ctx context.Context, id string) (*domain.SavedState, error) {
	return r.next.GetByID(ctx, id)
}

func (r *CachedSavedStateRepository) Upsert(ctx context.Context, state *domain.SavedState, limit int) (*domain.SavedState, error) {
	saved, err := r.next.Upsert(ctx, state, limit)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, state.UserID)
	return saved, nil
}

func (r *CachedSavedStateRepository) Delete(ctx context.Context, id, userID string) error {
	if err := r.next.Delete(ctx, id, userID); err != nil {
		return err
	}
	r.invalidate(ctx, userID)
	return nil
}
