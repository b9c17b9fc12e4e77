package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustUser(t *testing.T, users domain.UserRepository, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uuid.NewString(), email)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func mustState(t *testing.T, userID, name string, n int, updated time.Time) *domain.SavedState {
	t.Helper()
	s, err := domain.NewSavedState(userID, name, domain.ShareParams{Mode: domain.ModeNextN, N: domain.IntPtr(n)})
	require.NoError(t, err)
	s.CreatedAt = updated
	s.UpdatedAt = updated
	return s
}

func runUserRepositoryContract(t *testing.T, users domain.UserRepository) {
	ctx := context.Background()

	u := mustUser(t, users, "contract@penny.app")

	byEmail, err := users.GetByEmail(ctx, "contract@penny.app")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	dup, _ := domain.NewUser(uuid.NewString(), "contract@penny.app")
	assert.ErrorIs(t, users.Create(ctx, dup), domain.ErrEmailAlreadyExists)

	_, err = users.GetByEmail(ctx, "missing@penny.app")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func runSavedStateRepositoryContract(t *testing.T, users domain.UserRepository, repo domain.SavedStateRepository) {
	ctx := context.Background()
	base := time.Date(2026, time.October, 1, 12, 0, 0, 0, time.UTC)

	owner := mustUser(t, users, "owner@penny.app")
	other := mustUser(t, users, "other@penny.app")

	t.Run("Upsert replaces by name and keeps the id", func(t *testing.T) {
		first, err := repo.Upsert(ctx, mustState(t, owner.ID, "Holiday", 10, base), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)

		second, err := repo.Upsert(ctx, mustState(t, owner.ID, "Holiday", 20, base.Add(time.Hour)), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 20, *second.State.N)

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, owner.ID, got.UserID)
		assert.Equal(t, "Holiday", got.Name)
		assert.Equal(t, 20, *got.State.N)
		assert.Equal(t, domain.ModeNextN, got.State.Mode)
	})

	t.Run("List is newest first and scoped to the user", func(t *testing.T) {
		_, err := repo.Upsert(ctx, mustState(t, owner.ID, "Older", 1, base.Add(-time.Hour)), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, mustState(t, owner.ID, "Newest", 2, base.Add(2*time.Hour)), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)
		_, err = repo.Upsert(ctx, mustState(t, other.ID, "Theirs", 3, base), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)

		states, err := repo.ListByUserID(ctx, owner.ID)
		require.NoError(t, err)

		names := make([]string, 0, len(states))
		for _, s := range states {
			names = append(names, s.Name)
		}
		assert.Equal(t, []string{"Newest", "Holiday", "Older"}, names)
	})

	t.Run("Cap rejects new names but allows overwrites", func(t *testing.T) {
		capped := mustUser(t, users, "capped@penny.app")
		for i := 0; i < 3; i++ {
			_, err := repo.Upsert(ctx, mustState(t, capped.ID, string(rune('A'+i)), i+1, base), 3)
			require.NoError(t, err)
		}

		_, err := repo.Upsert(ctx, mustState(t, capped.ID, "D", 4, base), 3)
		assert.ErrorIs(t, err, domain.ErrSavedStateLimitReached)

		_, err = repo.Upsert(ctx, mustState(t, capped.ID, "A", 9, base), 3)
		assert.NoError(t, err)

		states, err := repo.ListByUserID(ctx, capped.ID)
		require.NoError(t, err)
		assert.Len(t, states, 3)
	})

	t.Run("Concurrent saves never exceed the cap", func(t *testing.T) {
		racer := mustUser(t, users, "racer@penny.app")

		pending := make([]*domain.SavedState, 8)
		for i := range pending {
			pending[i] = mustState(t, racer.ID, uuid.NewString(), i+1, base)
		}

		var wg sync.WaitGroup
		for _, s := range pending {
			wg.Add(1)
			go func(s *domain.SavedState) {
				defer wg.Done()
				_, _ = repo.Upsert(ctx, s, 5)
			}(s)
		}
		wg.Wait()

		states, err := repo.ListByUserID(ctx, racer.ID)
		require.NoError(t, err)
		assert.Len(t, states, 5)
	})

	t.Run("Delete is owner scoped", func(t *testing.T) {
		s, err := repo.Upsert(ctx, mustState(t, owner.ID, "Disposable", 5, base), domain.MaxSavedStatesPerUser)
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Delete(ctx, s.ID, other.ID), domain.ErrSavedStateNotFound)
		assert.NoError(t, repo.Delete(ctx, s.ID, owner.ID))
		assert.ErrorIs(t, repo.Delete(ctx, s.ID, owner.ID), domain.ErrSavedStateNotFound)

		_, err = repo.GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrSavedStateNotFound)
	})
}
