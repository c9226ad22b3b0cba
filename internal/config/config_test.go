package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HOST", "PORT",
		"DATABASE_URL", "DATABASE_MAX_OPEN_CONNS", "DATABASE_MAX_IDLE_CONNS", "DATABASE_CONN_MAX_LIFETIME_SECONDS",
		"JOURNAL_SESSION_SECRET", "JOURNAL_ADMIN_USER", "JOURNAL_ADMIN_HASH", "JOURNAL_ADMIN_PASSWORD",
		"LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/learning-journal?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, "itsaseekrit", cfg.Session.Secret)
	assert.Equal(t, "admin", cfg.Session.AdminUser)
	assert.Empty(t, cfg.Session.AdminHash)
	assert.Equal(t, "secret", cfg.Session.AdminPassword)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://db.example.com/journal")
	t.Setenv("JOURNAL_SESSION_SECRET", "prod-secret")
	t.Setenv("JOURNAL_ADMIN_HASH", "$2b$12$notarealhash")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres://db.example.com/journal", cfg.Database.DSN)
	assert.Equal(t, "prod-secret", cfg.Session.Secret)
	assert.Equal(t, "$2b$12$notarealhash", cfg.Session.AdminHash)
	assert.Equal(t, "json", cfg.Logging.Format)
}
