package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/socialgraph/pkg/httputil"
	"github.com/utafrali/socialgraph/pkg/logger"
)

type contextKeyType string

const userIDKey contextKeyType = "user_id"

// Messages written by Auth for each rejection reason.
const (
	MsgLoginRequired = "Please login to access this page"
	MsgInvalidToken  = "Invalid token, please login again"
	MsgExpiredToken  = "Token has expired, please login again"
)

// ErrTokenExpired must be returned (or wrapped) by a TokenValidator when the
// token is authentic but past its expiry. Any other error is treated as invalid.
var ErrTokenExpired = errors.New("token expired")

// Claims is the identity extracted by the auth middleware.
type Claims struct {
	UserID string
}

// TokenValidator verifies a session token and returns its claims.
type TokenValidator func(token string) (*Claims, error)

// Auth returns middleware that reads the session token from the named cookie,
// falling back to an "Authorization: Bearer" header, verifies it and stores
// the user ID in the request context. It never touches persistent state.
func Auth(cookieName string, validate TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				writeAuthError(w, r, MsgLoginRequired, rejectMissing)
				return
			}

			claims, err := validate(token)
			switch {
			case errors.Is(err, ErrTokenExpired):
				writeAuthError(w, r, MsgExpiredToken, rejectExpired)
				return
			case err != nil || claims == nil || claims.UserID == "":
				writeAuthError(w, r, MsgInvalidToken, rejectInvalid)
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("enduser.id", claims.UserID))

			ctx := WithUserID(r.Context(), claims.UserID)
			ctx = logger.WithUserID(ctx, claims.UserID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", claims.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// WithUserID stores an authenticated user ID in ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext extracts the user ID from the request context.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, r *http.Request, message, reason string) {
	authRejections.WithLabelValues(reason).Inc()
	httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
		Message:   message,
		Code:      "UNAUTHORIZED",
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	})
}
