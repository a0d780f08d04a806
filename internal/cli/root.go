// Package cli implements catalogctl, the operator tool for the catalog database.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bibliobot/bibliobot-server/internal/config"
	"github.com/bibliobot/bibliobot-server/internal/logger"
	"github.com/bibliobot/bibliobot-server/internal/store/sqlite"
)

// app carries what every subcommand needs once the root has opened it.
type app struct {
	dbPath   string
	logLevel string

	cfg   *config.Config
	log   *logger.Logger
	store *sqlite.Store
}

// NewRootCmd builds the catalogctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "catalogctl",
		Short: "Maintain and query the library catalog",
		Long: `catalogctl works directly on the catalog database: it fills the derived
search columns, imports records, and runs the same searches the chat does.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "catalog database path (default: CATALOG_DB_PATH or ~/bibliobot/catalog.db)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newBackfillCmd(a),
		newSearchCmd(a),
		newEditionsCmd(a),
		newLocationsCmd(a),
		newSeedCmd(a),
	)

	return root
}

// Execute runs catalogctl with the process arguments.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) open(logOut io.Writer) error {
	var args []string
	if a.dbPath != "" {
		args = append(args, "-db", a.dbPath)
	}
	if a.logLevel != "" {
		args = append(args, "-log-level", a.logLevel)
	}

	cfg, err := config.LoadConfigArgs(args)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log = logger.New(logger.Config{
		Writer:      logOut,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	st, err := sqlite.Open(cfg.Catalog.DBPath, a.log.Logger, sqlite.WithExcludedLevel(cfg.Catalog.ExcludedLevel))
	if err != nil {
		return fmt.Errorf("open catalog %s: %w", cfg.Catalog.DBPath, err)
	}
	a.store = st
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}
