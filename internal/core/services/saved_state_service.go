package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
)

type SavedStateService struct {
	repo  domain.SavedStateRepository
	limit int
}

func NewSavedStateService(repo domain.SavedStateRepository) *SavedStateService {
	return &SavedStateService{
		repo:  repo,
		limit: domain.MaxSavedStatesPerUser,
	}
}

type SaveStateInput struct {
	UserID string
	Name   string
	State  domain.ShareParams
}

func (s *SavedStateService) Save(ctx context.Context, input SaveStateInput) (*domain.SavedState, error) {
	state, err := domain.NewSavedState(input.UserID, input.Name, input.State.ForMode())
	if err != nil {
		return nil, err
	}

	saved, err := s.repo.Upsert(ctx, state, s.limit)
	if err != nil {
		return nil, fmt.Errorf("saved state service: %w", err)
	}
	return saved, nil
}

func (s *SavedStateService) List(ctx context.Context, userID string) ([]*domain.SavedState, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *SavedStateService) Get(ctx context.Context, id, userID string) (*domain.SavedState, error) {
	state, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.UserID != userID {
		return nil, domain.ErrSavedStateNotFound
	}
	return state, nil
}

func (s *SavedStateService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}
