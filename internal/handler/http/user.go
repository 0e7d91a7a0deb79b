package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/socialgraph/internal/domain"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
	"github.com/utafrali/socialgraph/pkg/httputil"
	"github.com/utafrali/socialgraph/pkg/middleware"
	"github.com/utafrali/socialgraph/pkg/validator"
)

const dobLayout = "2006-01-02"

// UserHandler handles profile endpoints for the authenticated user.
type UserHandler struct {
	service UserService
	cookies *sessionCookies
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc UserService, cookie CookieConfig, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, cookies: newSessionCookies(cookie), logger: logger}
}

// UpdateProfileRequest is the JSON request body for a profile update. Absent
// fields are left unchanged.
type UpdateProfileRequest struct {
	Username *string `json:"username" validate:"omitempty,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Profile  *string `json:"profile" validate:"omitempty,url"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female"`
	DOB      *string `json:"dob" validate:"omitempty,datetime=2006-01-02"`
}

func (req UpdateProfileRequest) params() (domain.UpdateProfileParams, error) {
	p := domain.UpdateProfileParams{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Profile:  req.Profile,
		Gender:   req.Gender,
	}
	if req.DOB != nil && *req.DOB != "" {
		dob, err := time.Parse(dobLayout, *req.DOB)
		if err != nil {
			return p, apperrors.InvalidInput("dob must be a date in 2006-01-02 format")
		}
		p.DOB = &dob
	}
	return p, nil
}

// Me handles GET /api/v1/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Me(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", user)
}

// UpdateProfile handles PUT /api/v1/users/update
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	params, err := req.params()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), middleware.UserIDFromContext(r.Context()), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "Profile updated successfully", user)
}

// Delete handles DELETE /api/v1/users/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.cookies.clear(w)
	httputil.WriteSuccess(w, http.StatusOK, "User deleted successfully", nil)
}

// Profile handles GET /api/v1/users/profile/{id}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "user")
	if !ok {
		return
	}

	user, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", user)
}
