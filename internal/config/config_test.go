package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  time.Minute,
		},
		Catalog: CatalogConfig{DBPath: "/data/catalog.db", ExcludedLevel: 5, BackfillBatch: 1000},
		Session: SessionConfig{
			Backend:       "memory",
			IdleTTL:       2 * time.Hour,
			SweepInterval: time.Hour,
		},
		RateLimit: RateLimitConfig{TurnsPerMinute: 30, Burst: 10},
	}
}

// isolate points HOME and the .env lookup at a temp dir so the host
// environment cannot leak into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "SERVER_PORT", "CORS_ORIGINS",
		"CATALOG_DB_PATH", "CATALOG_EXCLUDED_LEVEL", "CATALOG_BACKFILL_BATCH", "CATALOG_BACKFILL_ON_START",
		"SESSION_BACKEND", "SESSION_BADGER_PATH", "SESSION_IDLE_TTL", "SESSION_SWEEP_INTERVAL",
		"SESSION_SHOW_UNAVAILABLE", "TURN_RATE_PER_MINUTE", "TURN_BURST",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"port", func(c *Config) { c.Server.Port = "http" }},
		{"empty db path", func(c *Config) { c.Catalog.DBPath = "" }},
		{"zero batch", func(c *Config) { c.Catalog.BackfillBatch = 0 }},
		{"session backend", func(c *Config) { c.Session.Backend = "redis" }},
		{"badger without path", func(c *Config) { c.Session.Backend = "badger"; c.Session.BadgerPath = "" }},
		{"zero ttl", func(c *Config) { c.Session.IdleTTL = 0 }},
		{"zero rate", func(c *Config) { c.RateLimit.TurnsPerMinute = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigArgs_Defaults(t *testing.T) {
	home := isolate(t)
	t.Chdir(home)

	cfg, err := LoadConfigArgs(nil)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join(home, "bibliobot", "catalog.db"), cfg.Catalog.DBPath)
	assert.Equal(t, int64(5), cfg.Catalog.ExcludedLevel)
	assert.Equal(t, 1000, cfg.Catalog.BackfillBatch)
	assert.False(t, cfg.Catalog.BackfillOnStart)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, filepath.Join(home, "bibliobot", "sessions"), cfg.Session.BadgerPath)
	assert.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
	assert.False(t, cfg.Session.ShowUnavailable)
	assert.Equal(t, 30, cfg.RateLimit.TurnsPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadConfigArgs_Precedence(t *testing.T) {
	home := isolate(t)
	t.Chdir(home)

	envFile := filepath.Join(home, "test.env")
	content := "# catalog\nCATALOG_BACKFILL_BATCH=250\nLOG_LEVEL=warn\nSESSION_BACKEND=badger\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SESSION_SHOW_UNAVAILABLE", "yes")

	cfg, err := LoadConfigArgs([]string{
		"-env-file", envFile,
		"-port", "9100",
		"-db", "~/lib/catalog.db",
		"-session-ttl", "30m",
	})
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port, "flag beats env")
	assert.Equal(t, "debug", cfg.Logger.Level, "env beats .env")
	assert.Equal(t, 250, cfg.Catalog.BackfillBatch, ".env beats default")
	assert.Equal(t, "badger", cfg.Session.Backend)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, filepath.Join(home, "lib", "catalog.db"), cfg.Catalog.DBPath)
	assert.Equal(t, filepath.Join(home, "lib", "sessions"), cfg.Session.BadgerPath)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.True(t, cfg.Session.ShowUnavailable)
}

func TestLoadConfigArgs_InvalidDuration(t *testing.T) {
	home := isolate(t)
	t.Chdir(home)
	t.Setenv("SESSION_IDLE_TTL", "two hours")

	_, err := LoadConfigArgs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_IDLE_TTL")
}

func TestLoadConfigArgs_InvalidValues(t *testing.T) {
	home := isolate(t)
	t.Chdir(home)
	t.Setenv("ENV", "qa")

	_, err := LoadConfigArgs(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)

	got, err := expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("~/catalog.db", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "catalog.db"), got)

	got, err = expandPath("/var/lib/../lib/catalog.db", "")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/catalog.db", got)

	t.Chdir(home)
	got, err = expandPath("data/catalog.db", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data", "catalog.db"), got)
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_CONFIG_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_CONFIG_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_CONFIG_MISSING", "default"))
}

func TestGetIntAndBoolConfigValue(t *testing.T) {
	t.Setenv("TEST_INT", "not-a-number")
	t.Setenv("TEST_BOOL", "TRUE")

	assert.Equal(t, 7, getIntConfigValue("", "TEST_INT", 7))
	assert.Equal(t, 12, getIntConfigValue("12", "TEST_INT", 7))
	assert.True(t, getBoolConfigValue("", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "TEST_BOOL_MISSING", true))
}
