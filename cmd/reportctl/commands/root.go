package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"reportd/internal/app"
	"reportd/internal/config"
	"reportd/internal/services"
)

var (
	configPath   string
	storeDSN     string
	fixturesPath string
	verbose      bool

	cfg    *config.Config
	logger *slog.Logger
)

// Execute runs the reportctl command tree
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Generate report exports without the HTTP server",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if storeDSN != "" {
				loaded.Store.Driver = config.StoreDriverSQLite
				loaded.Store.DSN = storeDSN
			}
			if fixturesPath != "" {
				loaded.Store.FixturesPath = fixturesPath
			}
			cfg = loaded

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")
	root.PersistentFlags().StringVar(&storeDSN, "db", "", "sqlite DSN (overrides the configured store)")
	root.PersistentFlags().StringVar(&fixturesPath, "fixtures", "", "YAML fixtures loaded into the store before running")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(exportCmd(), summaryCmd(), seedCmd())
	return root
}

// withService opens the configured store, builds the export service and
// hands it to fn. The store is closed afterwards.
func withService(ctx context.Context, fn func(*services.ExportService) error) error {
	store, err := app.OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(app.NewExportService(cfg, store, logger, nil, nil))
}

// openOutput returns stdout for "" or "-" and a new file otherwise
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// completeValues offers a fixed set of flag values to shell completion
func completeValues[T ~string](values []T) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = string(v)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
