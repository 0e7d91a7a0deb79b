package repository

import (
	"context"
	"errors"
	"time"

	"github.com/utafrali/socialgraph/internal/domain"
)

// ErrCacheMiss is returned by ProfileCache.Get when no entry exists.
var ErrCacheMiss = errors.New("profile cache miss")

// UserRepository persists accounts. Lookups that find nothing return an error
// matching apperrors.ErrNotFound.
type UserRepository interface {
	// Create inserts a user. A duplicate email fails with AlreadyExists("email").
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns the user with its follower counts.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail returns the user including its password hash.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByResetTokenHash returns the user whose stored reset hash equals hash.
	GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error)

	// UpdateProfile applies the non-nil fields and returns the updated user.
	UpdateProfile(ctx context.Context, id string, params domain.UpdateProfileParams) (*domain.User, error)

	// UpdatePassword replaces the password hash and nothing else.
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetToken stores a reset hash and expiry, replacing any previous one.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// ClearResetToken removes any stored reset hash and expiry.
	ClearResetToken(ctx context.Context, id string) error

	// ResetPassword sets passwordHash and clears the reset fields in one
	// statement, only while the stored hash equals tokenHash and has not
	// expired at now. It returns the affected user id, or a not-found error
	// when no row qualified.
	ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (string, error)

	// Delete removes the user; follow edges go with it.
	Delete(ctx context.Context, id string) error
}

// FollowRepository persists the follow graph.
type FollowRepository interface {
	// Toggle follows followeeID when not yet following, otherwise unfollows,
	// atomically.
	Toggle(ctx context.Context, followerID, followeeID string) (domain.FollowAction, error)

	// ListFollowers returns a page of users following userID and the total.
	ListFollowers(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error)

	// ListFollowing returns a page of users userID follows and the total.
	ListFollowing(ctx context.Context, userID string, limit, offset int) ([]domain.FollowSummary, int, error)
}

// ProfileCache is a read-through cache of public profiles.
type ProfileCache interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, ids ...string) error
}
