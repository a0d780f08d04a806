package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bibliobot/bibliobot-server/internal/domain"
	"github.com/bibliobot/bibliobot-server/internal/service"
)

// errUnavailable is returned when the catalog could not answer.
var errUnavailable = errors.New("catalog unavailable, see log for details")

func newSearchCmd(a *app) *cobra.Command {
	var (
		mode   string
		offset int
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search works in the catalog",
		Long: `Runs a work search exactly as the chat does. Editions that normalize to the
same author and title are grouped into one work.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := service.NewCatalogService(a.store, a.log.Logger).SearchWorks(cmd.Context(), domain.SearchQuery{
				Text:   args[0],
				Mode:   domain.ParseSearchMode(mode),
				Offset: offset,
				Limit:  limit,
			})
			if !res.Available() {
				return errUnavailable
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res.Data)
			}

			if len(res.Data.Works) == 0 {
				fmt.Fprintln(out, "No works found.")
				return nil
			}
			for i, w := range res.Data.Works {
				fmt.Fprintf(out, "%3d. %s\n", offset+i+1, w.Title)
				if w.Author != "" {
					fmt.Fprintf(out, "     %s\n", w.Author)
				}
				fmt.Fprintf(out, "     editions: %d  key: %s\n", w.EditionsCount, w.Key)
			}
			if res.Data.HasMore {
				fmt.Fprintf(out, "More results: --offset %d\n", offset+len(res.Data.Works))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", string(domain.ModeAny), "search mode: any, title or author")
	cmd.Flags().IntVar(&offset, "offset", 0, "works to skip")
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultPageSize, "maximum number of works")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")

	return cmd
}

func newEditionsCmd(a *app) *cobra.Command {
	var (
		offset int
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "editions [work-key]",
		Short: "List the editions of a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := service.NewCatalogService(a.store, a.log.Logger).GetEditions(cmd.Context(), args[0], offset, limit)
			if !res.Available() {
				return errUnavailable
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, res.Data)
			}

			fmt.Fprintf(out, "Editions: %d\n", res.Data.Total)
			for i, e := range res.Data.Editions {
				fmt.Fprintf(out, "%3d. #%d %s", offset+i+1, e.ID, e.Title)
				if e.Volume != "" {
					fmt.Fprintf(out, ", %s", e.Volume)
				}
				fmt.Fprintln(out)
				for _, field := range []struct{ label, value string }{
					{"published", e.Publication},
					{"language", e.Language},
					{"shelf mark", e.IndexCatalogue},
					{"copies", e.CopyCount},
				} {
					if field.value != "" {
						fmt.Fprintf(out, "     %s: %s\n", field.label, field.value)
					}
				}
				if len(e.Locations) > 0 {
					fmt.Fprintf(out, "     locations: %v\n", e.Locations)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "editions to skip")
	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultPageSize, "maximum number of editions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")

	return cmd
}

func newLocationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locations [work-key]",
		Short: "Show where copies of a work are shelved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := service.NewCatalogService(a.store, a.log.Logger).GetWorkLocationStats(cmd.Context(), args[0])
			if !res.Available() {
				return errUnavailable
			}
			if res.Data == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No copies on the shelves.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Data)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return nil
}
