package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/mailer"
)

// --- Mock User Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id string, params domain.UpdateProfileParams) (*domain.User, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserRepository) ClearResetToken(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	args := m.Called(ctx, tokenHash, passwordHash, now)
	return args.String(0), args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// --- Mock Follow Repository ---

type mockFollowRepository struct {
	mock.Mock
}

func (m *mockFollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (domain.FollowAction, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Get(0).(domain.FollowAction), args.Error(1)
}

func (m *mockFollowRepository) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.FollowSummary), args.Int(1), args.Error(2)
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.FollowSummary), args.Int(1), args.Error(2)
}

// --- Mock Profile Cache ---

type mockProfileCache struct {
	mock.Mock
}

func (m *mockProfileCache) Get(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockProfileCache) Set(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockProfileCache) Invalidate(ctx context.Context, ids ...string) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// --- Mock Mailer ---

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendMail(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishUserUpdated(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockPublisher) PublishUserDeleted(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockPublisher) PublishPasswordResetRequested(ctx context.Context, userID, email string) error {
	return m.Called(ctx, userID, email).Error(0)
}

func (m *mockPublisher) PublishFollowToggled(ctx context.Context, followerID, followeeID string, action domain.FollowAction) error {
	return m.Called(ctx, followerID, followeeID, action).Error(0)
}
