package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/capetown-events/internal/config"
	"github.com/pfrederiksen/capetown-events/internal/logger"
	"github.com/pfrederiksen/capetown-events/internal/metrics"
	"github.com/pfrederiksen/capetown-events/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig      string
	flagLogLevel    string
	flagLogFormat   string
	flagMetricsFile string
)

// app holds what every subcommand needs once flags and config are resolved
type app struct {
	cfg     *config.Config
	store   *storage.Storage
	metrics *metrics.Recorder
	now     func() time.Time
	stdout  io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{now: time.Now}

	cmd := &cobra.Command{
		Use:   "ct-events",
		Short: "Cape Town event calendars and event-date scraping",
		Long: `Tools for tracking Cape Town events that disrupt traffic.

The calendar command turns the stadium's published events into an iCalendar
file. The scrape command reads the dates of major recurring events (races,
tours, the carnival) from their websites and writes them to a JSON report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a YAML config file (default: built-in config)")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	pf.StringVar(&flagLogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each run")

	cmd.AddCommand(
		newCalendarCmd(a),
		newScrapeCmd(a),
		newReportCmd(a),
		newFirstThursdaysCmd(a),
		newScheduleCmd(a),
	)

	return cmd
}

// setup configures logging and loads the configuration
func (a *app) setup(cmd *cobra.Command) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	format, err := logger.ParseFormat(flagLogFormat)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr(), format))

	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	store, err := storage.New(".")
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	a.cfg = cfg
	a.store = store
	a.metrics = metrics.New()
	a.stdout = cmd.OutOrStdout()

	logger.Debug("configuration loaded", logger.Fields{
		"config":   flagConfig,
		"sites":    len(cfg.Scraper.Sites),
		"timezone": cfg.Timezone,
	})

	return nil
}

// writeMetrics flushes the metrics file if one was requested
func (a *app) writeMetrics() {
	if err := a.metrics.WriteFile(flagMetricsFile); err != nil {
		logger.Warn("failed to write metrics file", logger.Fields{"path": flagMetricsFile}, err)
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
