package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/logger"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// StartupBackfillHandle tracks the optional backfill launched at startup.
type StartupBackfillHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable. It stops the backfill between batches
// and waits for the current batch to commit.
func (h *StartupBackfillHandle) Shutdown() error {
	h.cancel()
	<-h.done
	return nil
}

// ProvideStartupBackfill runs the catalog backfill in the background when
// CATALOG_BACKFILL_ON_START is set. Searches keep working meanwhile; rows
// without derived columns simply do not match yet.
func ProvideStartupBackfill(i do.Injector) (*StartupBackfillHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	backfill := do.MustInvoke[*service.CatalogBackfill](i)

	ctx, cancel := context.WithCancel(context.Background())
	h := &StartupBackfillHandle{cancel: cancel, done: make(chan struct{})}

	if !cfg.Catalog.BackfillOnStart {
		close(h.done)
		return h, nil
	}

	go func() {
		defer close(h.done)

		report, err := backfill.Run(ctx, service.BackfillOptions{BatchSize: cfg.Catalog.BackfillBatch})
		if err != nil {
			log.Error("Startup backfill failed", "error", err)
			return
		}
		log.Info("Startup backfill completed",
			"run_id", report.RunID,
			"processed", report.Processed,
			"duration", report.Duration,
		)
	}()

	return h, nil
}
