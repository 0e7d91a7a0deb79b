package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/socialgraph/internal/domain"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
	"github.com/utafrali/socialgraph/pkg/pagination"
)

// ToggleFollow follows targetID when userID does not follow it yet and
// unfollows it otherwise. It returns the action taken and the caller's
// refreshed profile.
func (s *UserService) ToggleFollow(ctx context.Context, userID, targetID string) (domain.FollowAction, *domain.User, error) {
	if userID == targetID {
		return "", nil, apperrors.InvalidInput("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return "", nil, fmt.Errorf("get follow target: %w", err)
	}

	action, err := s.follows.Toggle(ctx, userID, targetID)
	if err != nil {
		return "", nil, fmt.Errorf("toggle follow: %w", err)
	}

	s.invalidate(ctx, userID, targetID)
	if err := s.publisher.PublishFollowToggled(ctx, userID, targetID, action); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish follow event",
			slog.String("user_id", userID),
			slog.String("target_id", targetID),
			slog.String("error", err.Error()),
		)
	}

	me, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("reload current user: %w", err)
	}

	s.logger.InfoContext(ctx, "follow toggled",
		slog.String("user_id", userID),
		slog.String("target_id", targetID),
		slog.String("action", string(action)),
	)
	return action, me, nil
}

// ListFollowers returns a page of the users following userID.
func (s *UserService) ListFollowers(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return pagination.Result[domain.FollowSummary]{}, fmt.Errorf("get user: %w", err)
	}
	items, total, err := s.follows.ListFollowers(ctx, userID, params.PerPage, params.Offset)
	if err != nil {
		return pagination.Result[domain.FollowSummary]{}, fmt.Errorf("list followers: %w", err)
	}
	return pagination.NewResult(items, total, params), nil
}

// ListFollowing returns a page of the users userID follows.
func (s *UserService) ListFollowing(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return pagination.Result[domain.FollowSummary]{}, fmt.Errorf("get user: %w", err)
	}
	items, total, err := s.follows.ListFollowing(ctx, userID, params.PerPage, params.Offset)
	if err != nil {
		return pagination.Result[domain.FollowSummary]{}, fmt.Errorf("list following: %w", err)
	}
	return pagination.NewResult(items, total, params), nil
}
