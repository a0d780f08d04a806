// Package providers contains dependency injection providers for the catalog server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.IsDevelopment(),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Bibliobot Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"catalog_db", cfg.Catalog.DBPath,
		"session_backend", cfg.Session.Backend,
	)

	return log, nil
}
