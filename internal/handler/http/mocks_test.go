package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/service"
	"github.com/utafrali/socialgraph/pkg/pagination"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, string, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID string, input service.ChangePasswordInput) error {
	return m.Called(ctx, userID, input).Error(0)
}

func (m *mockUserService) ForgotPassword(ctx context.Context, email, baseURL string) error {
	return m.Called(ctx, email, baseURL).Error(0)
}

func (m *mockUserService) ResetPassword(ctx context.Context, input service.ResetPasswordInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockUserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, params domain.UpdateProfileParams) (*domain.User, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) DeleteMe(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockUserService) ToggleFollow(ctx context.Context, userID, targetID string) (domain.FollowAction, *domain.User, error) {
	args := m.Called(ctx, userID, targetID)
	action := args.Get(0).(domain.FollowAction)
	if args.Get(1) == nil {
		return action, nil, args.Error(2)
	}
	return action, args.Get(1).(*domain.User), args.Error(2)
}

func (m *mockUserService) ListFollowers(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(pagination.Result[domain.FollowSummary]), args.Error(1)
}

func (m *mockUserService) ListFollowing(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).(pagination.Result[domain.FollowSummary]), args.Error(1)
}
