package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/socialgraph/internal/auth"
	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/internal/event"
	"github.com/utafrali/socialgraph/internal/mailer"
	"github.com/utafrali/socialgraph/internal/repository"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
	"github.com/utafrali/socialgraph/pkg/logger"
)

// ResetPath is the route prefix embedded in password reset links.
const ResetPath = "/api/v1/users/passwords/reset/"

// minPasswordLength is the minimum password length required.
const minPasswordLength = 6

const resetMailSubject = "Password Reset"

// Deps are the collaborators of UserService. Cache and Publisher may be nil.
type Deps struct {
	Users     repository.UserRepository
	Follows   repository.FollowRepository
	Cache     repository.ProfileCache
	Hasher    *auth.PasswordHasher
	Tokens    *auth.JWTManager
	Resets    *auth.ResetTokenService
	Mailer    mailer.Mailer
	Publisher event.Publisher
	Logger    *slog.Logger
}

// UserService implements account, credential and social graph operations.
type UserService struct {
	users     repository.UserRepository
	follows   repository.FollowRepository
	cache     repository.ProfileCache
	hasher    *auth.PasswordHasher
	tokens    *auth.JWTManager
	resets    *auth.ResetTokenService
	mailer    mailer.Mailer
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(d Deps) *UserService {
	s := &UserService{
		users:     d.Users,
		follows:   d.Follows,
		cache:     d.Cache,
		hasher:    d.Hasher,
		tokens:    d.Tokens,
		resets:    d.Resets,
		mailer:    d.Mailer,
		publisher: d.Publisher,
		logger:    d.Logger,
		now:       time.Now,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.publisher == nil {
		s.publisher = event.NoopPublisher{}
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	return s
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// ChangePasswordInput holds the parameters for an authenticated password change.
type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// ResetPasswordInput holds the parameters for redeeming a reset token.
type ResetPasswordInput struct {
	Token              string
	NewPassword        string
	ConfirmNewPassword string
}

// Register creates an account and returns it with a session token.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (_ *domain.User, _ string, err error) {
	defer func() { recordAuth("register", err) }()

	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)
	if input.Username == "" {
		return nil, "", apperrors.InvalidInput("Username is required")
	}
	if input.Email == "" {
		return nil, "", apperrors.InvalidInput("Email is required")
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, "", err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	if err := s.publisher.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("email", logger.RedactEmail(user.Email)),
	)
	return user, token, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (_ *domain.User, _ string, err error) {
	defer func() { recordAuth("login", err) }()

	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", apperrors.InvalidInput("Please enter email and password")
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.Unauthorized("Invalid credentials")
		}
		return nil, "", fmt.Errorf("get user for login: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue session token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// ChangePassword replaces the password of userID after checking the current
// one. Input checks run before any store access.
func (s *UserService) ChangePassword(ctx context.Context, userID string, input ChangePasswordInput) (err error) {
	defer func() { recordAuth("change_password", err) }()

	if input.CurrentPassword == "" {
		return apperrors.InvalidInput("Current password is required")
	}
	if input.NewPassword == "" || input.ConfirmNewPassword == "" {
		return apperrors.InvalidInput("New password is required")
	}
	if input.NewPassword != input.ConfirmNewPassword {
		return apperrors.InvalidInput("New passwords do not match")
	}
	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user for password change: %w", err)
	}
	if !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		return apperrors.Unauthorized("Current password is incorrect")
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password changed", slog.String("user_id", user.ID))
	return nil
}

// ForgotPassword mints a reset token for email, stores its hash and mails the
// plaintext link rooted at baseURL. When delivery fails the stored token is
// cleared again.
func (s *UserService) ForgotPassword(ctx context.Context, email, baseURL string) (err error) {
	defer func() { recordAuth("forgot_password", err) }()

	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("Email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFoundMessage("User not found with that email")
		}
		return fmt.Errorf("get user for password reset: %w", err)
	}

	token, err := s.resets.Mint()
	if err != nil {
		return fmt.Errorf("mint reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	link := ResetURL(baseURL, token.Plaintext)
	sendErr := s.mailer.SendMail(ctx, mailer.Message{
		To:      user.Email,
		Subject: resetMailSubject,
		Text:    fmt.Sprintf("Your password reset token is :- \n\n %s", link),
	})
	if sendErr != nil {
		resetEmailsSent.WithLabelValues("failed").Inc()
		// The request context may be the reason delivery failed.
		clearCtx := context.WithoutCancel(ctx)
		if err := s.users.ClearResetToken(clearCtx, user.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear reset token after delivery failure",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return apperrors.DeliveryFailed("Failed to send email", sendErr)
	}
	resetEmailsSent.WithLabelValues("sent").Inc()

	if err := s.publisher.PublishPasswordResetRequested(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset_requested event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword redeems a reset token. The final write is conditional on the
// token still being stored and unexpired, so a token succeeds at most once.
func (s *UserService) ResetPassword(ctx context.Context, input ResetPasswordInput) (err error) {
	defer func() { recordAuth("reset_password", err) }()

	invalid := apperrors.NotFoundMessage("Invalid or expired token")
	if input.Token == "" {
		return invalid
	}
	tokenHash := s.resets.Hash(input.Token)

	user, err := s.users.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return invalid
		}
		return fmt.Errorf("get user by reset token: %w", err)
	}
	if user.ResetPasswordExpires == nil {
		return invalid
	}

	switch err := s.resets.Match(input.Token, user.ResetPasswordToken, *user.ResetPasswordExpires); {
	case errors.Is(err, auth.ErrResetTokenExpired):
		return apperrors.InvalidInput("Token has expired")
	case err != nil:
		return invalid
	}

	if input.NewPassword == "" || input.ConfirmNewPassword == "" {
		return apperrors.InvalidInput("New password is required")
	}
	if input.NewPassword != input.ConfirmNewPassword {
		return apperrors.InvalidInput("Passwords do not match")
	}
	if err := validatePassword(input.NewPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	id, err := s.users.ResetPassword(ctx, tokenHash, hash, s.now())
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", id))
	return nil
}

// ResetURL builds the link mailed to the user.
func ResetURL(baseURL, plaintext string) string {
	return strings.TrimRight(baseURL, "/") + ResetPath + plaintext
}

// BaseURLFromRequest derives "<scheme>://<host>" from r, honoring
// X-Forwarded-Proto when set by a proxy.
func BaseURLFromRequest(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return apperrors.InvalidInput(fmt.Sprintf("Password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isClientError(err error) bool {
	return apperrors.HTTPStatus(err) < http.StatusInternalServerError
}
