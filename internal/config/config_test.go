package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every override applyEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "APP_ENV", "PORT", "JWT_SECRET", "REDIS_URL", "CRON_SECRET",
		"RECONCILE_SCHEDULE", "SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const minimalYAML = `
database:
  url: postgres://localhost/campusreq
jwt:
  secret: 0123456789abcdef0123
`

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, minimalYAML))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DefaultReconcileSchedule, cfg.Reconcile.Schedule)
	assert.Equal(t, "campusreq:events", cfg.Redis.Channel)
	assert.Equal(t, 60, cfg.JWT.TTL)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Same(t, cfg, GetConfig())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", writeConfig(t, minimalYAML))
	t.Setenv("DATABASE_URL", "postgres://db/override")
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CRON_SECRET", "s3cret")
	t.Setenv("RECONCILE_SCHEDULE", "FREQ=MINUTELY;INTERVAL=5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/override", cfg.Database.DSN)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Redis.Enabled, "a redis url turns the relay on")
	assert.Equal(t, "s3cret", cfg.Reconcile.CronSecret)
	assert.Equal(t, "FREQ=MINUTELY;INTERVAL=5", cfg.Reconcile.Schedule)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)

	t.Setenv("CONFIG_PATH", writeConfig(t, "database:\n  url: postgres://x\njwt:\n  secret: short\n"))
	_, err := Load()
	assert.Error(t, err, "jwt secret too short")

	t.Setenv("CONFIG_PATH", writeConfig(t, minimalYAML+"reconcile:\n  schedule: EVERY=MINUTE\n"))
	_, err = Load()
	assert.ErrorContains(t, err, "invalid reconcile schedule")

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	assert.Error(t, err, "an explicit CONFIG_PATH must exist")
}
