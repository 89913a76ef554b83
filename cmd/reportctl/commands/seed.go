package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"reportd/internal/config"
	"reportd/internal/store/fixtures"
	"reportd/internal/store/sqlite"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "seed [FIXTURES.yaml]",
		Short:   "Load a fixtures file into the sqlite store",
		Example: `  reportctl seed --db file:reports.db --fixtures testdata/sample.yaml`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store.Driver != config.StoreDriverSQLite {
				return fmt.Errorf("seed needs the sqlite store, configured driver is %q", cfg.Store.Driver)
			}

			path := cfg.Store.FixturesPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no fixtures file given")
			}

			records, err := fixtures.Load(path)
			if err != nil {
				return err
			}

			// open directly: app.OpenStore would load the fixtures a second time
			store, err := sqlite.Open(cmd.Context(), cfg.Store.DSN, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Insert(cmd.Context(), records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records from %s\n", n, filepath.Base(path))
			return nil
		},
	}
}
