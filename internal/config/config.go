// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bibliobot/bibliobot-server/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Catalog   CatalogConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV" validate:"required,oneof=development staging production"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         string        `env:"SERVER_PORT" validate:"required,numeric"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
	CORSOrigins  []string      `env:"CORS_ORIGINS"`
}

// CatalogConfig holds the catalog database configuration.
type CatalogConfig struct {
	DBPath string `env:"CATALOG_DB_PATH" validate:"required"`
	// ExcludedLevel hides editions of this bibliographic level from search.
	ExcludedLevel int64 `env:"CATALOG_EXCLUDED_LEVEL"`
	// BackfillBatch is the number of editions derived per transaction.
	BackfillBatch   int  `env:"CATALOG_BACKFILL_BATCH" validate:"min=1,max=100000"`
	BackfillOnStart bool `env:"CATALOG_BACKFILL_ON_START"`
}

// SessionConfig holds conversation session configuration.
type SessionConfig struct {
	Backend         string        `env:"SESSION_BACKEND" validate:"oneof=memory badger"`
	BadgerPath      string        `env:"SESSION_BADGER_PATH"`
	IdleTTL         time.Duration `env:"SESSION_IDLE_TTL" validate:"gt=0"`
	SweepInterval   time.Duration `env:"SESSION_SWEEP_INTERVAL" validate:"gt=0"`
	ShowUnavailable bool          `env:"SESSION_SHOW_UNAVAILABLE"`
}

// RateLimitConfig holds per-user turn rate limiting.
type RateLimitConfig struct {
	TurnsPerMinute int `env:"TURN_RATE_PER_MINUTE" validate:"min=1"`
	Burst          int `env:"TURN_BURST" validate:"min=1"`
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	return LoadConfigArgs(os.Args[1:])
}

// LoadConfigArgs is LoadConfig with an explicit argument list.
func LoadConfigArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bibliobot", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed CORS origins (default: *)")

	// Catalog flags
	dbPath := fs.String("db", "", "Path to the catalog database (default: ~/bibliobot/catalog.db)")
	excludedLevel := fs.String("excluded-level", "", "Bibliographic level hidden from search (default: 5)")
	backfillBatch := fs.String("backfill-batch", "", "Editions per backfill transaction (default: 1000)")
	backfillOnStart := fs.String("backfill-on-start", "", "Run the catalog backfill at startup (default: false)")

	// Session flags
	sessionBackend := fs.String("session-backend", "", "Session store: memory or badger (default: memory)")
	sessionPath := fs.String("session-path", "", "Badger session directory (default: next to the catalog)")
	sessionTTL := fs.String("session-ttl", "", "Idle session lifetime (default: 2h)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists. Existing env vars win.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: strings.ToLower(getConfigValue(*logLevel, "LOG_LEVEL", "info")),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Catalog: CatalogConfig{
			DBPath:          getConfigValue(*dbPath, "CATALOG_DB_PATH", ""),
			BackfillBatch:   getIntConfigValue(*backfillBatch, "CATALOG_BACKFILL_BATCH", 1000),
			BackfillOnStart: getBoolConfigValue(*backfillOnStart, "CATALOG_BACKFILL_ON_START", false),
		},
		Session: SessionConfig{
			Backend:         strings.ToLower(getConfigValue(*sessionBackend, "SESSION_BACKEND", "memory")),
			BadgerPath:      getConfigValue(*sessionPath, "SESSION_BADGER_PATH", ""),
			ShowUnavailable: getBoolConfigValue("", "SESSION_SHOW_UNAVAILABLE", false),
		},
		RateLimit: RateLimitConfig{
			TurnsPerMinute: getIntConfigValue("", "TURN_RATE_PER_MINUTE", 30),
			Burst:          getIntConfigValue("", "TURN_BURST", 10),
		},
	}

	levelStr := getConfigValue(*excludedLevel, "CATALOG_EXCLUDED_LEVEL", "5")
	level, err := strconv.ParseInt(strings.TrimSpace(levelStr), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_EXCLUDED_LEVEL %q: %w", levelStr, err)
	}
	cfg.Catalog.ExcludedLevel = level

	durations := []struct {
		flagValue, envKey, def string
		dst                    *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*sessionTTL, "SESSION_IDLE_TTL", "2h", &cfg.Session.IdleTTL},
		{"", "SESSION_SWEEP_INTERVAL", "1h", &cfg.Session.SweepInterval},
	}
	for _, d := range durations {
		value := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, value, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if err := validation.New().Validate(c); err != nil {
		return err
	}
	if c.Session.Backend == "badger" && c.Session.BadgerPath == "" {
		return errors.New("SESSION_BADGER_PATH is required for the badger session backend")
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// expandPaths resolves the catalog and session paths.
// The badger directory defaults to "sessions" next to the catalog database.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dbPath, err := expandPath(c.Catalog.DBPath, filepath.Join(homeDir, "bibliobot", "catalog.db"))
	if err != nil {
		return fmt.Errorf("invalid catalog path: %w", err)
	}
	c.Catalog.DBPath = dbPath

	sessionPath, err := expandPath(c.Session.BadgerPath, filepath.Join(filepath.Dir(dbPath), "sessions"))
	if err != nil {
		return fmt.Errorf("invalid session path: %w", err)
	}
	c.Session.BadgerPath = sessionPath

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
