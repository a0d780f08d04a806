// Package di provides dependency injection configuration for the catalog server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/conversation"
	"github.com/bibliobot/bibliobot-server/internal/di/providers"
	"github.com/bibliobot/bibliobot-server/internal/logger"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSessionStore)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideCatalogBackfill)
	do.Provide(injector, providers.ProvideConversationEngine)
	do.Provide(injector, providers.ProvideTurnLimiter)

	// Workers
	do.Provide(injector, providers.ProvideSessionSweepJob)
	do.Provide(injector, providers.ProvideStartupBackfill)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SessionStoreHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.CatalogBackfill](injector)
	_ = do.MustInvoke[*conversation.Engine](injector)
	_ = do.MustInvoke[*providers.TurnLimiterHandle](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionSweepJob](injector)
	_ = do.MustInvoke[*providers.StartupBackfillHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
