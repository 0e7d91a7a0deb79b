package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/repository"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

// Me returns the authenticated user, bypassing the cache.
func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return user, nil
}

// GetProfile returns a public profile, reading through the profile cache.
// Cache failures are logged and fall back to the store.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "profile cache read failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user profile: %w", err)
	}

	if err := s.cache.Set(ctx, user); err != nil {
		s.logger.WarnContext(ctx, "profile cache write failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of params to userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, params domain.UpdateProfileParams) (*domain.User, error) {
	if params.Username != nil {
		trimmed := strings.TrimSpace(*params.Username)
		if trimmed == "" {
			return nil, apperrors.InvalidInput("Username must not be empty")
		}
		params.Username = &trimmed
	}
	if params.Email != nil {
		normalized := normalizeEmail(*params.Email)
		if normalized == "" {
			return nil, apperrors.InvalidInput("Email must not be empty")
		}
		params.Email = &normalized
	}
	if params.Gender != nil && !domain.IsValidGender(*params.Gender) {
		return nil, apperrors.InvalidInput("Gender must be male or female")
	}
	if params.DOB != nil && params.DOB.After(s.now()) {
		return nil, apperrors.InvalidInput("Date of birth must be in the past")
	}

	user, err := s.users.UpdateProfile(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.invalidate(ctx, user.ID)
	if err := s.publisher.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// DeleteMe removes the account of userID together with its follow edges.
func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.invalidate(ctx, userID)
	if err := s.publisher.PublishUserDeleted(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", userID))
	return nil
}

func (s *UserService) invalidate(ctx context.Context, ids ...string) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.WarnContext(ctx, "profile cache invalidation failed",
			slog.Any("user_ids", ids),
			slog.String("error", err.Error()),
		)
	}
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrCacheMiss
}
func (noopCache) Set(context.Context, *domain.User) error     { return nil }
func (noopCache) Invalidate(context.Context, ...string) error { return nil }
