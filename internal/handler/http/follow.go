package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/pkg/httputil"
	"github.com/utafrali/socialgraph/pkg/middleware"
	"github.com/utafrali/socialgraph/pkg/pagination"
)

// FollowHandler handles the follow graph endpoints.
type FollowHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewFollowHandler creates a new follow HTTP handler.
func NewFollowHandler(svc UserService, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{service: svc, logger: logger}
}

// Toggle handles POST /api/v1/users/follow/{id}
func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	targetID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "user")
	if !ok {
		return
	}

	action, me, err := h.service.ToggleFollow(r.Context(), middleware.UserIDFromContext(r.Context()), targetID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	message := "Followed"
	if action == domain.Unfollowed {
		message = "Unfollowed"
	}
	httputil.WriteSuccess(w, http.StatusOK, message, me)
}

// Followers handles GET /api/v1/users/followers/{id}
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListFollowers)
}

// Following handles GET /api/v1/users/following/{id}
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListFollowing)
}

type listFunc func(ctx context.Context, userID string, params pagination.Params) (pagination.Result[domain.FollowSummary], error)

func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, fetch listFunc) {
	userID, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"), "user")
	if !ok {
		return
	}

	result, err := fetch(r.Context(), userID, pagination.FromRequest(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, "", result)
}
