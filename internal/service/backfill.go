package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/normalize"
)

// DefaultBackfillBatchSize is the number of editions written per transaction.
const DefaultBackfillBatchSize = 1000

// BackfillStore is the write side of the catalog used by the backfill.
type BackfillStore interface {
	CountPendingEditions(ctx context.Context) (int, error)
	ListPendingEditions(ctx context.Context, afterID int64, limit int) ([]domain.PendingEdition, error)
	ApplyDerived(ctx context.Context, batch []domain.DerivedFields) error
	ResetDerived(ctx context.Context) error
}

// ProgressFunc is called after each committed batch.
type ProgressFunc func(processed, total int)

// BackfillOptions configures a backfill run.
type BackfillOptions struct {
	BatchSize int
	// Reset clears every derived column first so all keys are recomputed.
	Reset    bool
	Progress ProgressFunc
}

// BackfillReport summarizes a finished run.
type BackfillReport struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Batches   int           `json:"batches"`
	Duration  time.Duration `json:"duration"`
}

// CatalogBackfill computes normalized columns, work keys and search documents
// for editions that do not have them yet.
type CatalogBackfill struct {
	store  BackfillStore
	logger *slog.Logger
}

// NewCatalogBackfill creates a new backfill job.
func NewCatalogBackfill(store BackfillStore, logger *slog.Logger) *CatalogBackfill {
	return &CatalogBackfill{
		store:  store,
		logger: logger,
	}
}

// Run processes pending editions batch by batch until none remain.
//
// Each batch is committed atomically. A failing batch aborts the run and the
// error is returned; batches committed before it stay committed, so the job
// can simply be run again.
func (b *CatalogBackfill) Run(ctx context.Context, opts BackfillOptions) (*BackfillReport, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBackfillBatchSize
	}

	start := time.Now()
	report := &BackfillReport{RunID: uuid.NewString()}
	log := b.logger.With("run_id", report.RunID)

	if opts.Reset {
		if err := b.store.ResetDerived(ctx); err != nil {
			return report, fmt.Errorf("reset derived columns: %w", err)
		}
		log.Info("cleared derived catalog columns")
	}

	total, err := b.store.CountPendingEditions(ctx)
	if err != nil {
		return report, fmt.Errorf("count pending editions: %w", err)
	}
	report.Total = total

	if total == 0 {
		log.Info("catalog backfill: nothing to do")
		report.Duration = time.Since(start)
		return report, nil
	}

	log.Info("catalog backfill started", "pending", total, "batch_size", opts.BatchSize)

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pending, err := b.store.ListPendingEditions(ctx, afterID, opts.BatchSize)
		if err != nil {
			return report, fmt.Errorf("list pending editions: %w", err)
		}
		if len(pending) == 0 {
			break
		}

		batch := make([]domain.DerivedFields, len(pending))
		for i, p := range pending {
			batch[i] = deriveFields(p)
		}

		if err := b.store.ApplyDerived(ctx, batch); err != nil {
			log.Error("catalog backfill batch failed",
				"first_id", pending[0].ID,
				"last_id", pending[len(pending)-1].ID,
				"error", err,
			)
			return report, fmt.Errorf("apply batch after id %d: %w", afterID, err)
		}

		afterID = pending[len(pending)-1].ID
		report.Processed += len(pending)
		report.Batches++

		log.Info("catalog backfill progress", "processed", report.Processed, "total", total)
		if opts.Progress != nil {
			opts.Progress(report.Processed, total)
		}
	}

	report.Duration = time.Since(start)
	log.Info("catalog backfill finished",
		"processed", report.Processed,
		"batches", report.Batches,
		"duration", report.Duration,
	)
	return report, nil
}

// deriveFields computes the backfilled columns of one edition. The search
// document is the raw title and author; the store folds ё and tokenizes it.
func deriveFields(p domain.PendingEdition) domain.DerivedFields {
	return domain.DerivedFields{
		ID:         p.ID,
		TitleNorm:  normalize.Text(p.Title),
		AuthorNorm: normalize.Text(p.Author),
		WorkKey:    normalize.WorkKey(p.Author, p.Title),
		SearchText: p.Title + " " + p.Author,
	}
}
