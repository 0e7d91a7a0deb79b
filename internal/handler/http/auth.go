package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/socialgraph/internal/service"
	"github.com/utafrali/socialgraph/pkg/httputil"
	"github.com/utafrali/socialgraph/pkg/middleware"
	"github.com/utafrali/socialgraph/pkg/validator"
)

// AuthHandler handles registration, login and password endpoints.
type AuthHandler struct {
	service       UserService
	cookies       *sessionCookies
	publicBaseURL string
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler. When publicBaseURL is empty,
// reset links are rooted at the scheme and host of the incoming request.
func NewAuthHandler(svc UserService, cookie CookieConfig, publicBaseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:       svc,
		cookies:       newSessionCookies(cookie),
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for registration. Presence and
// password length are checked by the service.
type RegisterRequest struct {
	Username string `json:"username" validate:"max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the JSON request body for an authenticated
// password change.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// ForgotPasswordRequest is the JSON request body for requesting a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

// ResetPasswordRequest is the JSON request body for redeeming a reset link.
// The token itself travels in the URL.
type ResetPasswordRequest struct {
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// --- Handlers ---

// Register handles POST /api/v1/users/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	user, token, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.set(w, token)
	httputil.WriteSuccess(w, http.StatusCreated, fmt.Sprintf("Welcome %s", user.Username), user)
}

// Login handles POST /api/v1/users/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.set(w, token)
	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Welcome %s", user.Username), user)
}

// Logout handles GET /api/v1/users/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.clear(w)
	httputil.WriteSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

// ChangePassword handles PUT /api/v1/users/update/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	err := h.service.ChangePassword(r.Context(), userID, service.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Password updated successfully", nil)
}

// ForgotPassword handles POST /api/v1/users/passwords/forgot
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	baseURL := h.publicBaseURL
	if baseURL == "" {
		baseURL = service.BaseURLFromRequest(r)
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email, baseURL); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Password reset email sent to %s", req.Email), nil)
}

// ResetPassword handles POST /api/v1/users/passwords/reset/{token}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	err := h.service.ResetPassword(r.Context(), service.ResetPasswordInput{
		Token:              chi.URLParam(r, "token"),
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Password reset successfully", nil)
}
