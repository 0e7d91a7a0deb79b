package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/pkg/database"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

const emailUniqueConstraint = "users_email_key"

const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.profile, u.bio, u.gender, u.dob,
	       COALESCE(u.reset_password_token, ''), u.reset_password_expires, u.created_at, u.updated_at,
	       (SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id) AS followers_count,
	       (SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count
	FROM users u`

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (id, username, email, password_hash, profile, bio, gender, dob, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Profile,
		u.Bio,
		u.Gender,
		u.DOB,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err, emailUniqueConstraint) {
			return apperrors.AlreadyExists("email")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(ctx, "GetUserByID", selectUser+` WHERE u.id = $1`, id)
}

// GetByEmail retrieves a user by email, including the password hash.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, "GetUserByEmail", selectUser+` WHERE u.email = $1`, email)
}

// GetByResetTokenHash retrieves the user holding the given reset hash.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	return r.scanUser(ctx, "GetUserByResetToken", selectUser+` WHERE u.reset_password_token = $1`, hash)
}

// UpdateProfile applies the non-nil fields of params.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, params domain.UpdateProfileParams) (*domain.User, error) {
	if params.Empty() {
		return r.GetByID(ctx, id)
	}

	query := `
		UPDATE users
		SET username = COALESCE($2, username),
		    email = COALESCE($3, email),
		    bio = COALESCE($4, bio),
		    profile = COALESCE($5, profile),
		    gender = COALESCE($6, gender),
		    dob = COALESCE($7, dob),
		    updated_at = $8
		WHERE id = $1`

	if err := r.exec(ctx, "UpdateUserProfile", query,
		id,
		params.Username,
		params.Email,
		params.Bio,
		params.Profile,
		params.Gender,
		params.DOB,
		time.Now().UTC(),
	); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword replaces only the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return r.exec(ctx, "UpdateUserPassword", query, id, passwordHash, time.Now().UTC())
}

// SetResetToken stores a reset hash and expiry, overwriting any earlier one.
func (r *UserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_password_token = $2, reset_password_expires = $3 WHERE id = $1`
	return r.exec(ctx, "SetResetToken", query, id, tokenHash, expiresAt)
}

// ClearResetToken removes the stored reset hash and expiry.
func (r *UserRepository) ClearResetToken(ctx context.Context, id string) error {
	query := `UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL WHERE id = $1`
	return r.exec(ctx, "ClearResetToken", query, id)
}

// ResetPassword consumes a reset token and sets the new hash in one statement.
func (r *UserRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string, now time.Time) (id string, err error) {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_password_token = NULL,
		    reset_password_expires = NULL,
		    updated_at = $3
		WHERE reset_password_token = $1
		  AND reset_password_expires >= $3
		RETURNING id`

	ctx, end := database.TraceQuery(ctx, "ResetPassword", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query, tokenHash, passwordHash, now.UTC()).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFoundMessage("Invalid or expired token")
		}
		return "", fmt.Errorf("reset password: %w", err)
	}
	return id, nil
}

// Delete removes a user; follows cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, "DeleteUser", `DELETE FROM users WHERE id = $1`, id)
}

// exec runs a single-row statement and maps zero affected rows to not found.
func (r *UserRepository) exec(ctx context.Context, op, query string, args ...any) (err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, emailUniqueConstraint):
			return apperrors.AlreadyExists("email")
		case database.IsInvalidTextRepresentation(err):
			return apperrors.NotFound("user")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

// scanUser executes a query expected to return a single user row.
func (r *UserRepository) scanUser(ctx context.Context, op, query string, args ...any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Profile,
		&u.Bio,
		&u.Gender,
		&u.DOB,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpires,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.FollowersCount,
		&u.FollowingCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || database.IsInvalidTextRepresentation(err) {
			return nil, apperrors.NotFound("user")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
