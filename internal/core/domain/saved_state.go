package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrSavedStateNotFound     = errors.New("saved state not found")
	ErrSavedStateNameTooLong  = errors.New("saved state name is too long (max 100 chars)")
	ErrSavedStateLimitReached = errors.New("maximum saved states reached")
	ErrSavedStateInvalidUser  = errors.New("invalid user id")
)

const (
	DefaultSavedStateName = "Default"
	MaxSavedStateNameLen  = 100
	MaxSavedStatesPerUser = 10
)

// SavedState is a named ShareParams blob owned by one user. Names are unique
// per user; saving under an existing name replaces its state.
type SavedState struct {
	ID        string      `json:"id" db:"id"`
	UserID    string      `json:"-" db:"user_id"`
	Name      string      `json:"name" db:"name"`
	State     ShareParams `json:"state" db:"-"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

func NewSavedState(userID, name string, state ShareParams) (*SavedState, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrSavedStateInvalidUser
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSavedStateName
	}
	if utf8.RuneCountInString(name) > MaxSavedStateNameLen {
		return nil, ErrSavedStateNameTooLong
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}
	if state.Mode == "" {
		state.Mode = ModeNextN
	}

	now := time.Now().UTC()
	return &SavedState{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
