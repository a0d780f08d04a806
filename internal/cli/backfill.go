package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bibliobot/bibliobot-server/internal/service"
)

func newBackfillCmd(a *app) *cobra.Command {
	var (
		batchSize int
		reset     bool
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fill normalized columns, work keys and the search index",
		Long: `Derives the normalized title and author, the work key and the full-text
document for every edition that lacks them. Safe to interrupt and rerun:
each batch commits on its own and finished rows are skipped.

With --reset every edition is derived again, e.g. after normalization rules
change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if batchSize <= 0 {
				batchSize = a.cfg.Catalog.BackfillBatch
			}
			out := cmd.OutOrStdout()

			report, err := service.NewCatalogBackfill(a.store, a.log.Logger).Run(cmd.Context(), service.BackfillOptions{
				BatchSize: batchSize,
				Reset:     reset,
				Progress: func(processed, total int) {
					fmt.Fprintf(out, "processed %d/%d\n", processed, total)
				},
			})
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}

			fmt.Fprintf(out, "Backfill %s: %d editions in %d batches (%s)\n",
				report.RunID, report.Processed, report.Batches, report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 0, "editions per transaction (default: CATALOG_BACKFILL_BATCH)")
	cmd.Flags().BoolVar(&reset, "reset", false, "clear derived columns and rebuild everything")

	return cmd
}
