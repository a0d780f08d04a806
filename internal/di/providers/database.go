package providers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/logger"
	"github.com/bibliobot/bibliobot-server/internal/session"
	"github.com/bibliobot/bibliobot-server/internal/store/sqlite"
)

// StoreHandle wraps the catalog store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the catalog database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.DBPath), 0o750); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	st, err := sqlite.Open(cfg.Catalog.DBPath, log.Logger, sqlite.WithExcludedLevel(cfg.Catalog.ExcludedLevel))
	if err != nil {
		return nil, err
	}

	log.Info("Catalog database initialized",
		"path", cfg.Catalog.DBPath,
		"excluded_level", cfg.Catalog.ExcludedLevel,
	)

	return &StoreHandle{Store: st}, nil
}

// SessionStoreHandle wraps the conversation session store.
type SessionStoreHandle struct {
	session.Store
	badger *session.BadgerStore
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	if h.badger != nil {
		return h.badger.Close()
	}
	return nil
}

// ProvideSessionStore provides the session store selected by SESSION_BACKEND.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Session.Backend != "badger" {
		log.Info("Session store ready", "backend", "memory")
		return &SessionStoreHandle{Store: session.NewMemoryStore()}, nil
	}

	store, err := session.NewBadgerStore(cfg.Session.BadgerPath, cfg.Session.IdleTTL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Session store ready", "backend", "badger", "path", cfg.Session.BadgerPath)

	return &SessionStoreHandle{Store: store, badger: store}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
