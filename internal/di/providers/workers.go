package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/logger"
)

// SessionSweepJob periodically drops idle conversation sessions.
type SessionSweepJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionSweepJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionSweepJob provides the periodic session sweep.
func ProvideSessionSweepJob(i do.Injector) (*SessionSweepJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	ctx, cancel := context.WithCancel(context.Background())

	sweep := func() {
		count, err := sessions.Sweep(ctx, time.Now().Add(-cfg.Session.IdleTTL))
		if err != nil {
			log.Warn("Session sweep failed", "error", err)
			return
		}
		if count > 0 {
			log.Info("Session sweep completed", "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(cfg.Session.SweepInterval)
		defer ticker.Stop()

		sweep()

		for {
			select {
			case <-ticker.C:
				sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session sweep job started",
		"interval", cfg.Session.SweepInterval,
		"idle_ttl", cfg.Session.IdleTTL,
	)

	return &SessionSweepJob{cancel: cancel}, nil
}
