package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/socialgraph/pkg/config"
	"github.com/utafrali/socialgraph/pkg/database"
	"github.com/utafrali/socialgraph/pkg/tracing"
)

const (
	defaultJWTSecret  = "change-this-to-a-secure-secret"
	minJWTSecretBytes = 32
)

// Mail drivers.
const (
	MailDriverLog      = "log"
	MailDriverSMTP     = "smtp"
	MailDriverPostmark = "postmark"
)

// Config holds all configuration for the socialgraph service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"socialgraph"`
	Version     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"PORT" envDefault:"8000"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	// PublicBaseURL, when set, replaces the request scheme and host in
	// password reset links.
	PublicBaseURL      string   `env:"PUBLIC_BASE_URL"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	PprofAllowedCIDRs  []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// PostgreSQL
	PostgresHost       string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string        `env:"POSTGRES_USER" envDefault:"socialgraph"`
	PostgresPass       string        `env:"POSTGRES_PASSWORD" envDefault:"socialgraph_secret"`
	PostgresDB         string        `env:"POSTGRES_DB" envDefault:"socialgraph"`
	PostgresSSL        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PostgresMaxConns   int32         `env:"POSTGRES_MAX_CONNS" envDefault:"20"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// Redis profile cache
	RedisHost       string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort       int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	ProfileCacheTTL time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"5m"`

	// Kafka domain events. Publishing is disabled when no brokers are set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Session tokens
	JWTSecret        string        `env:"JWT_SECRET_KEY" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiration    time.Duration `env:"JWT_EXPIRATION_TIME" envDefault:"168h"`
	JWTIssuer        string        `env:"JWT_ISSUER" envDefault:"socialgraph"`
	CookieExpireDays int           `env:"COOKIE_EXPIRE_DAYS" envDefault:"7"`

	// Password reset
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"15m"`

	// Mail
	MailDriver          string        `env:"MAIL_DRIVER" envDefault:"log"`
	MailFrom            string        `env:"MAIL_FROM" envDefault:"no-reply@socialgraph.local"`
	MailTimeout         time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	SMTPHost            string        `env:"EMAIL_HOST"`
	SMTPPort            int           `env:"EMAIL_PORT" envDefault:"465"`
	SMTPUsername        string        `env:"EMAIL_USERNAME"`
	SMTPPassword        string        `env:"EMAIL_PASSWORD"`
	PostmarkServerToken string        `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkBaseURL     string        `env:"POSTMARK_BASE_URL" envDefault:"https://api.postmarkapp.com"`

	// Tracing
	TracingEnabled bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate     float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load socialgraph config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate checks invariants that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY must not be empty"))
	} else if !c.IsDevelopment() {
		if c.JWTSecret == defaultJWTSecret {
			errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be explicitly set via environment variable in %q mode", c.Environment))
		} else if len(c.JWTSecret) < minJWTSecretBytes {
			errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be at least %d characters long, got %d", minJWTSecretBytes, len(c.JWTSecret)))
		}
	}
	if c.JWTExpiration <= 0 {
		errs = append(errs, fmt.Errorf("JWT_EXPIRATION_TIME must be positive, got %s", c.JWTExpiration))
	}
	if c.CookieExpireDays < 1 {
		errs = append(errs, fmt.Errorf("COOKIE_EXPIRE_DAYS must be at least 1, got %d", c.CookieExpireDays))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("RESET_TOKEN_TTL must be positive, got %s", c.ResetTokenTTL))
	}
	if c.ProfileCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("PROFILE_CACHE_TTL must be positive, got %s", c.ProfileCacheTTL))
	}

	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", c.PublicBaseURL))
		}
	}
	for _, cidr := range c.PprofAllowedCIDRs {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errs = append(errs, fmt.Errorf("PPROF_ALLOWED_CIDRS: %w", err))
		}
	}

	switch c.MailDriver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.SMTPHost == "" || c.SMTPUsername == "" {
			errs = append(errs, errors.New("smtp mail driver requires EMAIL_HOST and EMAIL_USERNAME"))
		}
	case MailDriverPostmark:
		if c.PostmarkServerToken == "" {
			errs = append(errs, errors.New("postmark mail driver requires POSTMARK_SERVER_TOKEN"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_DRIVER %q (want log, smtp or postmark)", c.MailDriver))
	}

	if c.SampleRate < 0 || c.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be within [0,1], got %g", c.SampleRate))
	}

	return errors.Join(errs...)
}

// Postgres returns the connection settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:     c.PostgresHost,
		Port:     c.PostgresPort,
		User:     c.PostgresUser,
		Password: c.PostgresPass,
		DBName:   c.PostgresDB,
		SSLMode:  c.PostgresSSL,
		MaxConns: c.PostgresMaxConns,
	}
}

// Redis returns the connection settings for database.NewRedisClient.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		ServiceName:    c.ServiceName,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		OTLPEndpoint:   c.OTLPEndpoint,
		SampleRate:     c.SampleRate,
		Enabled:        c.TracingEnabled,
	}
}

// CookieLifetime is the session cookie expiry.
func (c *Config) CookieLifetime() time.Duration {
	return time.Duration(c.CookieExpireDays) * 24 * time.Hour
}
