// reeltally — incremental box-office ledger sync and yearly leaderboard.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/reeltally/internal/board"
	"github.com/seenimoa/reeltally/internal/config"
	"github.com/seenimoa/reeltally/internal/infra"
	"github.com/seenimoa/reeltally/internal/ingest"
	"github.com/seenimoa/reeltally/internal/ledger"
	"github.com/seenimoa/reeltally/internal/source"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reeltally",
	Short: "reeltally — box-office ledger sync and yearly leaderboard",
	Long: `reeltally ingests daily box-office revenue observations into an
append-only ledger without duplicating previously ingested days, then
republishes the ranked per-title leaderboard for the target year.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if year, _ := cmd.Flags().GetInt("year"); year != 0 {
			cfg.Year = year
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().Int("year", 0, "target calendar year override")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(checkCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reeltally %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Sync Command ---

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Ingest new days into the ledger and republish the leaderboard",
	Long: `Fetch the year's observations, append only the days newer than the
ledger's watermark, then recompute and republish the leaderboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rebuild, _ := cmd.Flags().GetBool("rebuild")

		runner, closeStore, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := runner.Run(cmd.Context(), cfg.Year, rebuild)
		if err != nil {
			return err
		}
		fmt.Println(summary)
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("rebuild", false, "clear the raw tab and re-ingest the whole year")
}

// --- Leaderboard Command ---

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Recompute and republish the leaderboard from the current ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, closeStore, err := buildRunner(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		summary, err := runner.Republish(cmd.Context(), cfg.Year)
		if err != nil {
			return err
		}
		fmt.Printf("leaderboard republished: %s\n", summary)
		return nil
	},
}

// --- Check Command ---

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the data source and the ledger store are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := buildSource(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := src.Ping(ctx); err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			fmt.Printf("source %s: ok\n", src.Name())
			return nil
		})
		g.Go(func() error {
			st, err := ledger.OpenSQLite(cfg.Ledger.Path)
			if err != nil {
				return fmt.Errorf("ledger store: %w", err)
			}
			defer st.Close()
			rows, err := st.Rows(ctx, cfg.Ledger.RawTab)
			if err != nil {
				return fmt.Errorf("ledger store: %w", err)
			}
			if len(rows) == 0 {
				fmt.Printf("ledger %s: ok (tab %q empty, header pending)\n", cfg.Ledger.Path, cfg.Ledger.RawTab)
			} else {
				fmt.Printf("ledger %s: ok (%d rows in tab %q)\n", cfg.Ledger.Path, len(rows)-1, cfg.Ledger.RawTab)
			}
			return nil
		})
		return g.Wait()
	},
}

// --- Wiring helpers ---

// buildSource constructs the configured data source.
func buildSource(cfg *config.Config) (source.Source, error) {
	if cfg.Fetch.TimeoutSec > 0 {
		infra.HTTPClient.Timeout = time.Duration(cfg.Fetch.TimeoutSec) * time.Second
	}
	switch cfg.Source.Mode {
	case "bulk":
		return source.NewBulkDataset(cfg.Source.DatasetURL), nil
	case "scrape":
		base, max := cfg.Fetch.Backoff()
		return source.NewDailyScraper(cfg.Source.ScrapeURL, source.ScrapeOptions{
			MaxAttempts: cfg.Fetch.MaxAttempts,
			Backoff:     infra.Backoff{Base: base, Max: max},
			Delay:       cfg.Fetch.Delay(),
			RatePerSec:  cfg.Fetch.RatePerSec,
		}), nil
	default:
		return nil, fmt.Errorf("unknown source mode %q", cfg.Source.Mode)
	}
}

// buildRunner wires the store, source, and publisher into a runner.
func buildRunner(cfg *config.Config) (*ingest.Runner, func(), error) {
	src, err := buildSource(cfg)
	if err != nil {
		return nil, nil, err
	}

	st, err := ledger.OpenSQLite(cfg.Ledger.Path)
	if err != nil {
		return nil, nil, err
	}

	runner := &ingest.Runner{
		Source:    src,
		Store:     st,
		RawTab:    cfg.Ledger.RawTab,
		BatchSize: cfg.Ledger.AppendBatch,
		Board:     &board.Publisher{Store: st, Tab: cfg.Leaderboard.Tab},
		Limit:     cfg.Leaderboard.Limit,
	}
	return runner, func() { st.Close() }, nil
}
