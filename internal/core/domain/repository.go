package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMagicLinkInvalid = errors.New("magic link is invalid or expired")
)

type SavedStateRepository interface {
	// Upsert stores state under (UserID, Name). A new name is refused with
	// ErrSavedStateLimitReached once the user already holds limit states;
	// overwriting an existing name is always allowed. On overwrite the
	// returned state carries the stored ID and CreatedAt.
	Upsert(ctx context.Context, state *SavedState, limit int) (*SavedState, error)

	// ListByUserID returns the user's states, most recently updated first.
	ListByUserID(ctx context.Context, userID string) ([]*SavedState, error)

	GetByID(ctx context.Context, id string) (*SavedState, error)

	// Delete removes a state only if it belongs to userID.
	Delete(ctx context.Context, id string, userID string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// MagicLinkStore keeps single-use sign-in tokens, keyed by their hash.
type MagicLinkStore interface {
	Save(ctx context.Context, tokenHash, email string, ttl time.Duration) error

	// Consume returns the email bound to tokenHash and deletes it.
	// Unknown or expired tokens yield ErrMagicLinkInvalid.
	Consume(ctx context.Context, tokenHash string) (string, error)
}

// Mailer delivers sign-in links.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string) error
}

// RateLimitStore counts hits per key in fixed windows. Hit returns the count
// for the current window, including this hit, and the time until it resets.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
