package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the process needs at startup. The JWT secret is
// deliberately required: there is no fallback value, a process without one
// must not come up.
type Config struct {
	Env  string `env:"APP_ENV, default=dev"`
	Port int    `env:"PORT, default=8080"`

	DBHost     string `env:"DB_HOST, default=127.0.0.1"`
	DBPort     string `env:"DB_PORT, default=5432"`
	DBUser     string `env:"DB_USER, default=billboard"`
	DBPassword string `env:"DB_PASSWORD, default=billboard"`
	DBName     string `env:"DB_NAME, default=billboard"`
	DBSSLMode  string `env:"DB_SSLMODE, default=disable"`

	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL, default=1h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB, default=0"`

	RateLimit       int           `env:"RATE_LIMIT, default=100"`
	RateWindow      time.Duration `env:"RATE_WINDOW, default=15m"`
	AuthRateLimit   int           `env:"AUTH_RATE_LIMIT, default=5"`
	AuthRateWindow  time.Duration `env:"AUTH_RATE_WINDOW, default=15m"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES, default=1048576"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS, default=http://localhost"`
	BillboardTTL    time.Duration `env:"BILLBOARD_CACHE_TTL, default=30s"`
	AuditBufferSize int           `env:"AUDIT_BUFFER_SIZE, default=256"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// optional first-admin bootstrap
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME, default=Admin"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config

	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST out of range: %d", c.BcryptCost)
	}

	return nil
}

func (c Config) DBURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
