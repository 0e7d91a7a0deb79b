package http

import (
	"context"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/service"
	"github.com/utafrali/socialgraph/pkg/pagination"
)

// UserService is the application surface the handlers depend on.
// *service.UserService implements it.
type UserService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	ChangePassword(ctx context.Context, userID string, input service.ChangePasswordInput) error
	ForgotPassword(ctx context.Context, email, baseURL string) error
	ResetPassword(ctx context.Context, input service.ResetPasswordInput) error

	Me(ctx context.Context, userID string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, params domain.UpdateProfileParams) (*domain.User, error)
	DeleteMe(ctx context.Context, userID string) error

	ToggleFollow(ctx context.Context, userID, targetID string) (domain.FollowAction, *domain.User, error)
	ListFollowers(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error)
	ListFollowing(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error)
}

var _ UserService = (*service.UserService)(nil)
