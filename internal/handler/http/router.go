package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/socialgraph/internal/auth"
	"github.com/utafrali/socialgraph/pkg/health"
	"github.com/utafrali/socialgraph/pkg/middleware"
)

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	ServiceName       string
	Service           UserService
	Tokens            *auth.JWTManager
	Health            *health.Handler
	Logger            *slog.Logger
	CORS              middleware.CORSConfig
	Cookie            CookieConfig
	PublicBaseURL     string
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all socialgraph routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, cfg.Logger)

	authHandler := NewAuthHandler(cfg.Service, cfg.Cookie, cfg.PublicBaseURL, cfg.Logger)
	userHandler := NewUserHandler(cfg.Service, cfg.Cookie, cfg.Logger)
	followHandler := NewFollowHandler(cfg.Service, cfg.Logger)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.NoStore)

		// Public endpoints
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/passwords/forgot", authHandler.ForgotPassword)
		r.Post("/forget/password", authHandler.ForgotPassword)
		r.Post("/passwords/reset/{token}", authHandler.ResetPassword)
		r.Post("/reset/password/{token}", authHandler.ResetPassword)

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(SessionCookieName, tokenValidator(cfg.Tokens)))

			r.Get("/me", userHandler.Me)
			r.Get("/logout", authHandler.Logout)
			r.Put("/update", userHandler.UpdateProfile)
			r.Put("/update/password", authHandler.ChangePassword)
			r.Delete("/delete", userHandler.Delete)
			r.Get("/profile/{id}", userHandler.Profile)

			r.Post("/follow/{id}", followHandler.Toggle)
			r.Get("/followers/{id}", followHandler.Followers)
			r.Get("/following/{id}", followHandler.Following)
		})
	})

	return r
}

// tokenValidator bridges the session token manager to the auth middleware.
func tokenValidator(tokens *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		userID, err := tokens.Verify(token)
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, fmt.Errorf("%w: %w", middleware.ErrTokenExpired, err)
		}
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: userID}, nil
	}
}
