package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port        string   `env:"PORT,        default=5000"`
	Env         string   `env:"ENV,         default=development"`
	LogLevel    string   `env:"LOG_LEVEL,   default=info"`
	CORSOrigins []string `env:"CORS_ORIGIN, default=*"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Audit AuditConfig
	Seed  SeedConfig
}

type AuthConfig struct {
	AccessSecret     string   `env:"JWT_ACCESS_SECRET"`
	RefreshSecret    string   `env:"JWT_REFRESH_SECRET"`
	AccessTTL        Duration `env:"ACCESS_TOKEN_EXPIRES_IN,  default=15m"`
	RefreshTTL       Duration `env:"REFRESH_TOKEN_EXPIRES_IN, default=7d"`
	BcryptCost       int      `env:"BCRYPT_COST,              default=10"`
	LoginMaxAttempts int      `env:"LOGIN_MAX_ATTEMPTS,       default=10"`
	LoginWindow      Duration `env:"LOGIN_ATTEMPT_WINDOW,     default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=lingoleap"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL,    default=admin@example.com"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
	AdminName     string `env:"SEED_ADMIN_NAME,     default=Admin"`
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the token settings. Only commands that sign or verify
// tokens need them, so Load leaves this to the caller.
func (a AuthConfig) Validate() error {
	if a.AccessSecret == "" || a.RefreshSecret == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must be set")
	}
	if a.AccessSecret == a.RefreshSecret {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if a.AccessTTL.Std() <= 0 || a.RefreshTTL.Std() <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}
