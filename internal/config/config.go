package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `env:"DB_HOST"`
	Port               string `env:"DB_PORT, default=5432"`
	User               string `env:"DB_USER"`
	Password           string `env:"DB_PASSWORD"`
	Name               string `env:"DB_NAME, default=pizza"`
	SSLMode            string `env:"DB_SSLMODE, default=disable"`
	MaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS, default=10"`
	MaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS, default=5"`
	ConnMaxLifetimeSec int    `env:"DB_CONN_MAX_LIFETIME_SEC, default=300"`
	// ListPerPage is the fixed page size used when listing a diner's orders.
	ListPerPage int `env:"DB_LIST_PER_PAGE, default=10"`
}

// MinIOConfig holds object storage settings for menu images.
// Storage is optional: an empty endpoint disables it.
type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=menu-images"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// Enabled reports whether enough settings are present to build a client.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// FactoryConfig points at the pizza factory that fulfils diner orders.
type FactoryConfig struct {
	URL        string `env:"FACTORY_URL, default=https://pizza-factory.cs329.click"`
	APIKey     string `env:"FACTORY_API_KEY"`
	TimeoutSec int    `env:"FACTORY_TIMEOUT_SEC, default=10"`
}

// Timeout returns the request timeout for factory calls.
func (c FactoryConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// AdminConfig is the account seeded when the schema is created for the first time.
type AdminConfig struct {
	Name     string `env:"ADMIN_NAME, default=常用名字"`
	Email    string `env:"ADMIN_EMAIL, default=a@jwt.com"`
	Password string `env:"ADMIN_PASSWORD, default=admin"`
}

// AuthConfig holds credential signing and hashing settings.
type AuthConfig struct {
	JWTSecret  string `env:"JWT_SECRET"`
	BcryptCost int    `env:"BCRYPT_COST, default=10"`
}

// LogConfig controls the zerolog logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string `env:"APP_HOST, default=localhost:3000"`
	Port     string `env:"PORT, default=3000"`
	Version  string `env:"APP_VERSION, default=dev"`
	Log      LogConfig
	Auth     AuthConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Factory  FactoryConfig
	Admin    AdminConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load(ctx context.Context) (*AppConfig, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if cfg.Database.ListPerPage <= 0 {
		cfg.Database.ListPerPage = 10
	}
	return &cfg, nil
}
