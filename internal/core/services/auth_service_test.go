package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/comitanigiacomo/penny-challenge/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockMagicLinkStore struct {
	mock.Mock
}

func (m *MockMagicLinkStore) Save(ctx context.Context, tokenHash, email string, ttl time.Duration) error {
	return m.Called(ctx, tokenHash, email, ttl).Error(0)
}

func (m *MockMagicLinkStore) Consume(ctx context.Context, tokenHash string) (string, error) {
	args := m.Called(ctx, tokenHash)
	return args.String(0), args.Error(1)
}

type recordingSender struct {
	to    []string
	links []string
}

func (r *recordingSender) Enqueue(to, link string) {
	r.to = append(r.to, to)
	r.links = append(r.links, link)
}

const testBaseURL = "https://penny.example"

func newAuthFixture() (*AuthService, *MockUserRepository, *MockMagicLinkStore, *recordingSender) {
	users := new(MockUserRepository)
	links := new(MockMagicLinkStore)
	sender := &recordingSender{}
	tokens := NewTokenService("secret", "penny-test", time.Hour, users)
	return NewAuthService(users, links, sender, tokens, testBaseURL), users, links, sender
}

func TestAuthService_RequestLink(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Success: Should store hash and queue link", func(t *testing.T) {
		service, _, links, sender := newAuthFixture()

		var storedHash string
		links.On("Save", ctx, mock.AnythingOfType("string"), "saver@penny.app", MagicLinkTTL).
			Run(func(args mock.Arguments) { storedHash = args.String(1) }).
			Return(nil)

		err := service.RequestLink(ctx, "Saver@Penny.app")
		require.NoError(t, err)

		require.Len(t, sender.links, 1)
		assert.Equal(t, "saver@penny.app", sender.to[0])

		link := sender.links[0]
		assert.True(t, strings.HasPrefix(link, testBaseURL+"/api/v1/auth/verify?token="))

		u, err := url.Parse(link)
		require.NoError(t, err)
		token := u.Query().Get("token")
		assert.Len(t, token, 64)
		assert.Equal(t, hashToken(token), storedHash)
		assert.NotEqual(t, token, storedHash)

		links.AssertExpectations(t)
	})

	t.Run("Fail: Should reject invalid email", func(t *testing.T) {
		service, _, links, sender := newAuthFixture()

		err := service.RequestLink(ctx, "not-an-email")

		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.Empty(t, sender.links)
		links.AssertNotCalled(t, "Save")
	})

	t.Run("Fail: Should not send when store fails", func(t *testing.T) {
		service, _, links, sender := newAuthFixture()
		links.On("Save", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		err := service.RequestLink(ctx, "saver@penny.app")

		assert.Error(t, err)
		assert.Empty(t, sender.links)
	})
}

func TestAuthService_Verify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	token := "abc123"

	t.Run("Success: Existing user gets a session", func(t *testing.T) {
		service, users, links, _ := newAuthFixture()
		existing := &domain.User{ID: "user-1", Email: "saver@penny.app"}

		links.On("Consume", ctx, hashToken(token)).Return("saver@penny.app", nil)
		users.On("GetByEmail", ctx, "saver@penny.app").Return(existing, nil)

		session, err := service.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, existing, session.User)
		assert.NotEmpty(t, session.Token)

		users.AssertNotCalled(t, "Create")
	})

	t.Run("Success: First sign-in creates the user", func(t *testing.T) {
		service, users, links, _ := newAuthFixture()

		links.On("Consume", ctx, hashToken(token)).Return("new@penny.app", nil)
		users.On("GetByEmail", ctx, "new@penny.app").Return(nil, domain.ErrUserNotFound)
		users.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		session, err := service.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "new@penny.app", session.User.Email)
		assert.NotEmpty(t, session.User.ID)

		users.AssertExpectations(t)
	})

	t.Run("Success: Concurrent creation falls back to lookup", func(t *testing.T) {
		service, users, links, _ := newAuthFixture()
		winner := &domain.User{ID: "user-2", Email: "race@penny.app"}

		links.On("Consume", ctx, hashToken(token)).Return("race@penny.app", nil)
		users.On("GetByEmail", ctx, "race@penny.app").Return(nil, domain.ErrUserNotFound).Once()
		users.On("Create", ctx, mock.Anything).Return(domain.ErrEmailAlreadyExists)
		users.On("GetByEmail", ctx, "race@penny.app").Return(winner, nil).Once()

		session, err := service.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-2", session.User.ID)
	})

	t.Run("Fail: Used or unknown token", func(t *testing.T) {
		service, users, links, _ := newAuthFixture()
		links.On("Consume", ctx, hashToken(token)).Return("", domain.ErrMagicLinkInvalid)

		session, err := service.Verify(ctx, token)

		assert.ErrorIs(t, err, domain.ErrMagicLinkInvalid)
		assert.Nil(t, session)
		users.AssertNotCalled(t, "GetByEmail")
	})

	t.Run("Fail: Empty token never reaches the store", func(t *testing.T) {
		service, _, links, _ := newAuthFixture()

		_, err := service.Verify(ctx, "")

		assert.ErrorIs(t, err, domain.ErrMagicLinkInvalid)
		links.AssertNotCalled(t, "Consume")
	})
}
