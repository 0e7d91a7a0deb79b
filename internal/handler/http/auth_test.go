package http

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/socialgraph/internal/service"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
	"github.com/utafrali/socialgraph/pkg/health"
	"github.com/utafrali/socialgraph/pkg/logger"
)

func TestRegister_Created(t *testing.T) {
	f := newRouterFixture(t)
	f.svc.On("Register", mock.Anything, service.RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "secret1",
	}).Return(sampleUser(aliceID, "alice"), "session-token", nil)

	rec := f.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	}, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "Welcome alice", resp.Message)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, aliceID, data["id"])
	assert.NotContains(t, data, "password_hash")

	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, "session-token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), c.MaxAge)
}

func TestRegister_MalformedEmailIsRejectedBeforeService(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"username": "alice", "email": "not-an-email", "password": "secret1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Contains(t, resp.Fields, "email")
	f.svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newRouterFixture(t)
	f.svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, "", apperrors.AlreadyExists("email"))

	rec := f.do(t, http.MethodPost, "/api/v1/users/register", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "email already exists", resp.Message)
	assert.Nil(t, sessionCookie(rec))
}

func TestRegister_MalformedJSON(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/users/register", "just a string", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", decodeResponse(t, rec).Message)
}

func TestLogin(t *testing.T) {
	t.Run("success sets the session cookie", func(t *testing.T) {
		f := newRouterFixture(t)
		f.svc.On("Login", mock.Anything, "alice@example.com", "secret1").
			Return(sampleUser(aliceID, "alice"), "session-token", nil)

		rec := f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
			"email": "alice@example.com", "password": "secret1",
		}, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome alice", decodeResponse(t, rec).Message)
		c := sessionCookie(rec)
		require.NotNil(t, c)
		assert.Equal(t, "session-token", c.Value)
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newRouterFixture(t)
		f.svc.On("Login", mock.Anything, "alice@example.com", "wrong").
			Return(nil, "", apperrors.Unauthorized("Invalid credentials"))

		rec := f.do(t, http.MethodPost, "/api/v1/users/login", map[string]string{
			"email": "alice@example.com", "password": "wrong",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decodeResponse(t, rec).Message)
		assert.Nil(t, sessionCookie(rec))
	})
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/users/logout", nil, f.token(t, aliceID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decodeResponse(t, rec).Message)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Negative(t, c.MaxAge)
}

func TestChangePassword(t *testing.T) {
	body := map[string]string{
		"currentPassword":    "secret1",
		"newPassword":        "secret2",
		"confirmNewPassword": "secret2",
	}
	input := service.ChangePasswordInput{
		CurrentPassword: "secret1", NewPassword: "secret2", ConfirmNewPassword: "secret2",
	}

	t.Run("success", func(t *testing.T) {
		f := newRouterFixture(t)
		f.svc.On("ChangePassword", mock.Anything, aliceID, input).Return(nil)

		rec := f.do(t, http.MethodPut, "/api/v1/users/update/password", body, f.token(t, aliceID))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Password updated successfully", decodeResponse(t, rec).Message)
	})

	t.Run("wrong current password", func(t *testing.T) {
		f := newRouterFixture(t)
		f.svc.On("ChangePassword", mock.Anything, aliceID, input).
			Return(apperrors.Unauthorized("Current password is incorrect"))

		rec := f.do(t, http.MethodPut, "/api/v1/users/update/password", body, f.token(t, aliceID))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Current password is incorrect", decodeResponse(t, rec).Message)
	})
}

func TestForgotPassword(t *testing.T) {
	for _, path := range []string{"/api/v1/users/passwords/forgot", "/api/v1/users/forget/password"} {
		t.Run(path, func(t *testing.T) {
			f := newRouterFixture(t)
			f.svc.On("ForgotPassword", mock.Anything, "alice@example.com", "https://social.example.com").Return(nil)

			rec := f.do(t, http.MethodPost, path, map[string]string{"email": "alice@example.com"}, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Password reset email sent to alice@example.com", decodeResponse(t, rec).Message)
		})
	}
}

func TestForgotPassword_Failures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown email",
			err:        apperrors.NotFoundMessage("User not found with that email"),
			wantStatus: http.StatusNotFound,
			wantMsg:    "User not found with that email",
		},
		{
			name:       "delivery failure",
			err:        apperrors.DeliveryFailed("Failed to send email", errors.New("smtp: 554")),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to send email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.svc.On("ForgotPassword", mock.Anything, "alice@example.com", mock.Anything).Return(tt.err)

			rec := f.do(t, http.MethodPost, "/api/v1/users/passwords/forgot", map[string]string{"email": "alice@example.com"}, "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decodeResponse(t, rec).Message)
		})
	}
}

func TestForgotPassword_RequestBaseURL(t *testing.T) {
	f := newRouterFixture(t)
	f.router = NewRouter(RouterConfig{
		ServiceName: "socialgraph",
		Service:     f.svc,
		Tokens:      f.tokens,
		Health:      health.NewHandler(),
		Logger:      logger.Discard(),
		Cookie:      CookieConfig{Lifetime: time.Hour},
	})
	f.svc.On("ForgotPassword", mock.Anything, "alice@example.com", "http://example.com").Return(nil)

	rec := f.do(t, http.MethodPost, "/api/v1/users/passwords/forgot", map[string]string{"email": "alice@example.com"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetPassword(t *testing.T) {
	body := map[string]string{"newPassword": "secret2", "confirmNewPassword": "secret2"}
	input := service.ResetPasswordInput{Token: "abc123", NewPassword: "secret2", ConfirmNewPassword: "secret2"}

	for _, path := range []string{"/api/v1/users/passwords/reset/abc123", "/api/v1/users/reset/password/abc123"} {
		t.Run(path, func(t *testing.T) {
			f := newRouterFixture(t)
			f.svc.On("ResetPassword", mock.Anything, input).Return(nil)

			rec := f.do(t, http.MethodPost, path, body, "")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "Password reset successfully", decodeResponse(t, rec).Message)
		})
	}

	t.Run("invalid token", func(t *testing.T) {
		f := newRouterFixture(t)
		f.svc.On("ResetPassword", mock.Anything, input).
			Return(apperrors.NotFoundMessage("Invalid or expired token"))

		rec := f.do(t, http.MethodPost, "/api/v1/users/passwords/reset/abc123", body, "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Invalid or expired token", decodeResponse(t, rec).Message)
	})
}
