// Command boardroom runs the public-money signal pipeline: ingest raw
// splits and tweets, clean the observation log, render market
// snapshots, and produce the ranked picks report.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/boardroomlabs/boardroom/internal/app"
	"github.com/boardroomlabs/boardroom/internal/config"
	"github.com/boardroomlabs/boardroom/pkg/logger"
	"github.com/boardroomlabs/boardroom/pkg/metrics"
)

// exitNoPicks signals a clean run that promoted nothing. Schedulers
// distinguish it from failure so an empty slate does not page anyone.
const exitNoPicks = 78

// errNoPicks maps OutcomeNoPicks onto the command error path so the
// exit code is decided in one place.
var errNoPicks = errors.New("no promotable picks")

var (
	flagConfig   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "boardroom",
	Short: "Public-money betting signal pipeline",
	Long: `boardroom turns raw betting-split screenshots and tweet exports into
a ranked report of where public money is concentrating.

Stages can run individually (ingest, clean, snapshot, picks) or as a
full chain (run). The observation log is the only shared mutable file;
every report is rewritten atomically on each run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override the configured log level")
	rootCmd.AddCommand(ingestCmd, cleanCmd, snapshotCmd, picksCmd, runCmd)
}

// newService loads configuration, initializes logging and metrics, and
// builds the pipeline service shared by every subcommand.
func newService(ctx context.Context) (*service.Service, error) {
	if flagConfig != "" {
		if err := os.Setenv("BOARDROOM_CONFIG", flagConfig); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger.Init()
	logger.SetLevelString(cfg.LogLevel)
	log := logger.Get()

	met := metrics.NewManager(metrics.WithEnabled(cfg.MetricsAddr != ""))
	if cfg.MetricsAddr != "" {
		go func() {
			if err := met.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn(ctx, "metrics listener stopped", logger.Error(err))
			}
		}()
	}

	return service.New(cfg,
		service.WithLogger(log),
		service.WithMetrics(met),
	), nil
}

func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errNoPicks) {
			fmt.Fprintln(os.Stderr, err)
			return exitNoPicks
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute())
}
