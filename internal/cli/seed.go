package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// seedRecord is one line of a seed file. Field names follow the catalog
// export columns.
type seedRecord struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Author         string   `json:"author"`
	DataEdition    string   `json:"data_edition"`
	Language       string   `json:"language"`
	IndexCatalogue string   `json:"index_catalogue"`
	Volume         string   `json:"volume"`
	CopyCount      string   `json:"copy_count"`
	LevelID        *int64   `json:"level_id"`
	Locations      []string `json:"locations"`
}

func (r *seedRecord) edition() domain.Edition {
	return domain.Edition{
		ID:             r.ID,
		Title:          r.Title,
		Author:         r.Author,
		Publication:    r.DataEdition,
		LanguageCode:   r.Language,
		IndexCatalogue: r.IndexCatalogue,
		Volume:         r.Volume,
		CopyCount:      r.CopyCount,
		LevelID:        r.LevelID,
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var backfill bool

	cmd := &cobra.Command{
		Use:   "seed [file.jsonl]",
		Short: "Import catalog records from a JSON lines file",
		Long: `Imports one edition per line. Each line is an object with the catalog
columns (id, title, author, data_edition, language, index_catalogue, volume,
copy_count, level_id) and an optional "locations" array of inventory places.
Blank lines and lines starting with # are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0]) //#nosec G304 -- operator supplied path
			if err != nil {
				return fmt.Errorf("open seed file: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			imported, lineNum := 0, 0
			for scanner.Scan() {
				lineNum++
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}

				var rec seedRecord
				if err := json.Unmarshal([]byte(line), &rec); err != nil {
					return fmt.Errorf("line %d: %w", lineNum, err)
				}

				e := rec.edition()
				if err := a.store.CreateEdition(ctx, &e); err != nil {
					return fmt.Errorf("line %d: %w", lineNum, err)
				}
				for _, loc := range rec.Locations {
					if err := a.store.AddInventory(ctx, e.ID, loc); err != nil {
						return fmt.Errorf("line %d: %w", lineNum, err)
					}
				}
				imported++
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d editions\n", imported)

			if !backfill {
				fmt.Fprintln(out, "Run 'catalogctl backfill' to make them searchable.")
				return nil
			}

			report, err := service.NewCatalogBackfill(a.store, a.log.Logger).Run(ctx, service.BackfillOptions{
				BatchSize: a.cfg.Catalog.BackfillBatch,
			})
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}
			fmt.Fprintf(out, "Backfilled %d editions\n", report.Processed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&backfill, "backfill", false, "run the backfill after importing")

	return cmd
}
