package providers

import (
	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/conversation"
	"github.com/bibliobot/bibliobot-server/internal/logger"
	"github.com/bibliobot/bibliobot-server/internal/ratelimit"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// ProvideCatalogService provides the catalog query engine.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, log.Logger), nil
}

// ProvideCatalogBackfill provides the derived column backfill.
func ProvideCatalogBackfill(i do.Injector) (*service.CatalogBackfill, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogBackfill(storeHandle.Store, log.Logger), nil
}

// ProvideConversationEngine provides the chat dialog engine.
func ProvideConversationEngine(i do.Injector) (*conversation.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	return conversation.NewEngine(catalog, sessions.Store, log.Logger, conversation.Options{
		ShowUnavailable: cfg.Session.ShowUnavailable,
	}), nil
}

// TurnLimiterHandle wraps the per-user turn limiter with shutdown capability.
type TurnLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *TurnLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideTurnLimiter provides the per-user conversation rate limiter.
func ProvideTurnLimiter(i do.Injector) (*TurnLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(
		ratelimit.PerMinute(cfg.RateLimit.TurnsPerMinute),
		cfg.RateLimit.Burst,
		cfg.Session.IdleTTL,
	)
	return &TurnLimiterHandle{KeyedRateLimiter: limiter}, nil
}
