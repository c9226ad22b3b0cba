// Package config loads the application configuration from the environment.
// The loaded value is immutable and passed explicitly to every component;
// nothing reads ambient environment state after startup.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config is the process-wide configuration. All values carry development
// defaults; production deployments override them through the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Session  SessionConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=5000"`
}

type DatabaseConfig struct {
	DSN             string `env:"DATABASE_URL,default=postgres://localhost/learning-journal?sslmode=disable"`
	MaxOpenConns    int    `env:"DATABASE_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int    `env:"DATABASE_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime int    `env:"DATABASE_CONN_MAX_LIFETIME_SECONDS,default=300"`
}

// SessionConfig holds the signing secret and the single admin credential.
// AdminHash takes precedence when set; otherwise a hash is derived from
// AdminPassword at startup (development convenience only).
type SessionConfig struct {
	Secret        string `env:"JOURNAL_SESSION_SECRET,default=itsaseekrit"`
	AdminUser     string `env:"JOURNAL_ADMIN_USER,default=admin"`
	AdminHash     string `env:"JOURNAL_ADMIN_HASH"`
	AdminPassword string `env:"JOURNAL_ADMIN_PASSWORD,default=secret"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=info"`
	Format string `env:"LOG_FORMAT,default=text"`
}

// Load decodes the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.Session.Secret == "" {
		return nil, fmt.Errorf("JOURNAL_SESSION_SECRET must not be empty")
	}
	return &cfg, nil
}
