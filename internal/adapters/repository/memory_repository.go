package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
)

var (
	_ domain.SavedStateRepository = (*InMemorySavedStateRepository)(nil)
	_ domain.UserRepository       = (*InMemoryUserRepository)(nil)
)

type InMemorySavedStateRepository struct {
	store map[string]*domain.SavedState

	mu sync.RWMutex
}

func NewInMemorySavedStateRepository() *InMemorySavedStateRepository {
	return &InMemorySavedStateRepository{
		store: make(map[string]*domain.SavedState),
	}
}

func copyState(s *domain.SavedState) *domain.SavedState {
	c := *s
	return &c
}

func (r *InMemorySavedStateRepository) Upsert(ctx context.Context, state *domain.SavedState, limit int) (*domain.SavedState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, s := range r.store {
		if s.UserID != state.UserID {
			continue
		}
		if s.Name == state.Name {
			s.State = state.State
			s.UpdatedAt = state.UpdatedAt
			return copyState(s), nil
		}
		count++
	}

	if count >= limit {
		return nil, domain.ErrSavedStateLimitReached
	}

	stored := copyState(state)
	r.store[stored.ID] = stored
	return copyState(stored), nil
}

func (r *InMemorySavedStateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.SavedState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := []*domain.SavedState{}
	for _, s := range r.store {
		if s.UserID == userID {
			states = append(states, copyState(s))
		}
	}

	sort.Slice(states, func(i, j int) bool {
		if !states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].UpdatedAt.After(states[j].UpdatedAt)
		}
		return states[i].ID < states[j].ID
	})

	return states, nil
}

func (r *InMemorySavedStateRepository) GetByID(ctx context.Context, id string) (*domain.SavedState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.store[id]
	if !ok {
		return nil, domain.ErrSavedStateNotFound
	}
	return copyState(s), nil
}

func (r *InMemorySavedStateRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store[id]
	if !ok || s.UserID != userID {
		return domain.ErrSavedStateNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]string

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}

	u := *user
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	r.byID[u.ID] = &u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}
