package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"orphansweep/internal/config"
	"orphansweep/pkg/db/store"
)

func NewCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fingerprint cache",
		Long:  "Inspect or clear the persistent fingerprint cache used to avoid re-hashing unchanged files across runs.",
	}

	cmd.PersistentFlags().String("cache", config.GetDefault().Cache.Path, "fingerprint cache file")
	viper.BindPFlag("cache.path", cmd.PersistentFlags().Lookup("cache"))

	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Display cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := openCacheStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read cache statistics: %w", err)
			}

			fmt.Printf("Cache file:         %s\n", viper.GetString("cache.path"))
			fmt.Printf("Total entries:      %s\n", humanize.Comma(stats.Entries))
			fmt.Printf("Total size tracked: %s\n", humanize.IBytes(uint64(stats.TotalBytes)))

			if len(stats.Newest) > 0 {
				fmt.Println("\nLatest entries:")
				for _, entry := range stats.Newest {
					fmt.Printf("  %s\n", entry.Path)
					fmt.Printf("    Date: %s | Size: %s | Digest: %.16s...\n",
						entry.ModTime().Format("2006-01-02 15:04:05"),
						humanize.IBytes(uint64(entry.Size)), entry.Digest)
				}
			}

			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached fingerprint",
		Long: `Delete every cached fingerprint.

Fingerprints are re-derived from file content on the next run, so clearing
the cache never changes sweep results; it only costs one full re-hash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			st, err := openCacheStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Clear(ctx); err != nil {
				return err
			}

			fmt.Printf("Cache cleared: %s\n", viper.GetString("cache.path"))
			return nil
		},
	}
}

func openCacheStore(ctx context.Context) (*store.SQLiteStore, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	st, err := store.NewSQLiteStore(store.SQLiteConfig{
		Path:           cfg.Cache.Path,
		FlushThreshold: cfg.Hash.FlushThreshold,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open fingerprint cache: %w", err)
	}
	if err := st.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect fingerprint cache: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate fingerprint cache: %w", err)
	}

	return st, nil
}
