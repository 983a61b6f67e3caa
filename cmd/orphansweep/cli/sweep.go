package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orphansweep/internal/config"
	"orphansweep/internal/sweep"
	"orphansweep/pkg/db/store"
	"orphansweep/pkg/log"
)

func NewSweepCommand() *cobra.Command {
	var source string
	var dests []string
	var dryRun bool
	var autoDelete bool
	var forceDeleteFolders bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Find and delete orphan media files",
		Long: `Find files in the source directory with no byte-identical counterpart
in any destination directory, then confirm and delete them one by one.`,
		Example: `  orphansweep sweep -S ~/Downloads -D ~/Films -D ~/Series
  orphansweep sweep --source /tmp/videos --dest /media/films --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				viper.Set("log.level", "DEBUG")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			logger := log.NewLoggerService("orphansweep", cfg.Log)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			st, err := store.NewSQLiteStore(store.SQLiteConfig{
				Path:           cfg.Cache.Path,
				FlushThreshold: cfg.Hash.FlushThreshold,
			})
			if err != nil {
				return fmt.Errorf("failed to open fingerprint cache: %w", err)
			}
			if err := st.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect fingerprint cache: %w", err)
			}
			defer st.Close()

			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate fingerprint cache: %w", err)
			}

			sweeper := sweep.New(cfg, logger, st, sweep.Options{
				DryRun:             dryRun,
				AutoDelete:         autoDelete,
				ForceDeleteFolders: forceDeleteFolders,
			})

			_, err = sweeper.Run(ctx, source, dests)
			if errors.Is(err, context.Canceled) {
				logger.Warn("Operation cancelled by user, no changes made")
				return err
			}
			if errors.Is(err, sweep.ErrAborted) {
				logger.Info("Operation aborted")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&source, "source", "S", "", "source directory to analyze")
	cmd.Flags().StringArrayVarP(&dests, "dest", "D", nil, "destination directory (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphans without deleting")
	cmd.Flags().BoolVar(&autoDelete, "auto-delete", false, "delete without confirmation (DANGEROUS)")
	cmd.Flags().BoolVar(&forceDeleteFolders, "force-delete-folders", false, "delete non-empty folders without asking")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show per-file actions in real time")
	defaults := config.GetDefault()
	cmd.Flags().String("cache", defaults.Cache.Path, "fingerprint cache file")
	cmd.Flags().Int("workers", 0, "number of hashing workers (default: one per CPU)")

	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("dest")

	viper.BindPFlag("cache.path", cmd.Flags().Lookup("cache"))
	viper.BindPFlag("hash.workers", cmd.Flags().Lookup("workers"))

	return cmd
}
