package middleware

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/socialgraph/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched with
// whatever of correlation_id, trace_id and span_id is already present.
// Mount it after RequestLogging and Tracing. Auth adds user_id later for
// protected routes.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := UserIDFromContext(ctx); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
