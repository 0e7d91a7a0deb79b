package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/socialgraph/internal/auth"
	"github.com/utafrali/socialgraph/internal/config"
	"github.com/utafrali/socialgraph/internal/event"
	handler "github.com/utafrali/socialgraph/internal/handler/http"
	"github.com/utafrali/socialgraph/internal/mailer"
	"github.com/utafrali/socialgraph/internal/repository"
	"github.com/utafrali/socialgraph/internal/repository/postgres"
	rediscache "github.com/utafrali/socialgraph/internal/repository/redis"
	"github.com/utafrali/socialgraph/internal/service"
	"github.com/utafrali/socialgraph/migrations"
	"github.com/utafrali/socialgraph/pkg/database"
	"github.com/utafrali/socialgraph/pkg/health"
	pkgkafka "github.com/utafrali/socialgraph/pkg/kafka"
	"github.com/utafrali/socialgraph/pkg/middleware"
	"github.com/utafrali/socialgraph/pkg/tracing"
)

// App wires together all dependencies and runs the socialgraph service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *goredis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	ok := false
	defer func() {
		if !ok {
			_ = a.closeResources()
		}
	}()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.tracerShutdown = tracerShutdown

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, cfg.ServiceName); err != nil {
		logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
	}

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	if cfg.SlowQueryThreshold > 0 {
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)
	}

	// The profile cache is optional; without Redis every read hits Postgres.
	var cache repository.ProfileCache
	if client, err := database.NewRedisClient(ctx, cfg.Redis()); err != nil {
		logger.Warn("redis unavailable, profile cache disabled", slog.String("error", err.Error()))
	} else {
		a.redis = client
		cache = rediscache.NewProfileCache(client, cfg.ProfileCacheTTL)
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
	}

	// Domain events are disabled when no brokers are configured.
	var publisher event.Publisher = event.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	mail, err := mailer.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	tokens, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return nil, fmt.Errorf("init session tokens: %w", err)
	}

	userService := service.NewUserService(service.Deps{
		Users:     postgres.NewUserRepository(pool),
		Follows:   postgres.NewFollowRepository(pool),
		Cache:     cache,
		Hasher:    auth.NewPasswordHasher(auth.DefaultBcryptCost),
		Tokens:    tokens,
		Resets:    auth.NewResetTokenService(cfg.ResetTokenTTL),
		Mailer:    mail,
		Publisher: publisher,
		Logger:    logger,
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if client := a.redis; client != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	if producer := a.producer; producer != nil {
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
	}

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName: cfg.ServiceName,
		Service:     userService,
		Tokens:      tokens,
		Health:      healthHandler,
		Logger:      logger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowCredentials: true,
			Environment:      cfg.Environment,
		},
		Cookie: handler.CookieConfig{
			Lifetime: cfg.CookieLifetime(),
			Secure:   !cfg.IsDevelopment(),
		},
		PublicBaseURL:     cfg.PublicBaseURL,
		PprofAllowedCIDRs: cfg.PprofAllowedCIDRs,
	})

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: HTTP server, tracer,
// Kafka producer, Redis, PostgreSQL.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Spans are flushed after the HTTP drain so in-flight request spans are captured.
	if err := a.closeResources(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// closeResources flushes the tracer and releases the broker, cache and
// database clients that were opened. It is also used to unwind a partially
// built App.
func (a *App) closeResources() error {
	var errs []error
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := a.tracerShutdown(tracerCtx)
		tracerCancel()
		if err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.tracerShutdown = nil
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.producer = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
		a.redis = nil
	}
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return errors.Join(errs...)
}
