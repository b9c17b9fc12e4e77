package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/google/uuid"
)

const (
	MagicLinkTTL      = 24 * time.Hour
	magicLinkTokenLen = 32
)

// LinkSender queues a magic-link email for delivery.
type LinkSender interface {
	Enqueue(to, link string)
}

type AuthService struct {
	users   domain.UserRepository
	links   domain.MagicLinkStore
	sender  LinkSender
	tokens  *TokenService
	baseURL string
}

func NewAuthService(users domain.UserRepository, links domain.MagicLinkStore, sender LinkSender, tokens *TokenService, baseURL string) *AuthService {
	return &AuthService{
		users:   users,
		links:   links,
		sender:  sender,
		tokens:  tokens,
		baseURL: baseURL,
	}
}

type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newLinkToken() (string, error) {
	b := make([]byte, magicLinkTokenLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RequestLink stores a single-use token for email and queues the link. Only
// the token hash is persisted.
func (s *AuthService) RequestLink(ctx context.Context, email string) error {
	email, err := domain.NormalizeEmail(email)
	if err != nil {
		return err
	}

	token, err := newLinkToken()
	if err != nil {
		return fmt.Errorf("auth service: failed to generate token: %w", err)
	}

	if err := s.links.Save(ctx, hashToken(token), email, MagicLinkTTL); err != nil {
		return fmt.Errorf("auth service: failed to store magic link: %w", err)
	}

	s.sender.Enqueue(email, s.linkFor(token))
	return nil
}

func (s *AuthService) linkFor(token string) string {
	return s.baseURL + "/api/v1/auth/verify?" + url.Values{"token": {token}}.Encode()
}

// Verify consumes a magic-link token and opens a session. The first
// successful sign-in for an address creates the user.
func (s *AuthService) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, domain.ErrMagicLinkInvalid
	}

	email, err := s.links.Consume(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.register(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	signed, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &Session{Token: signed, User: user}, nil
}

func (s *AuthService) register(ctx context.Context, email string) (*domain.User, error) {
	user, err := domain.NewUser(uuid.NewString(), email)
	if err != nil {
		return nil, err
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrEmailAlreadyExists) {
		// Lost a race with a concurrent first sign-in.
		return s.users.GetByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("auth service: failed to create user: %w", err)
	}
	return user, nil
}
