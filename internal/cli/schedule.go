package cli

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/capetown-events/internal/logger"
)

var (
	flagCron   string
	flagRunNow bool
)

func newScheduleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run calendar and scrape on a cron schedule",
		Long: `Run the calendar builder and then the scraper each time the cron
expression fires, until interrupted. The expression has a leading seconds
field, e.g. "0 0 6 * * *" for 06:00 every day in the configured timezone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := a.cfg.Schedule.Cron
			if cmd.Flags().Changed("cron") {
				spec = flagCron
			}
			if spec == "" {
				return fmt.Errorf("no cron expression configured")
			}
			return a.runSchedule(cmd.Context(), spec, flagRunNow)
		},
	}

	cmd.Flags().StringVar(&flagCron, "cron", "", "Cron expression with seconds (default from config)")
	cmd.Flags().BoolVar(&flagRunNow, "run-now", false, "Run once immediately before waiting for the schedule")

	return cmd
}

// runSchedule blocks until ctx is done, running both pipelines on spec.
// A run still in progress when the next one fires is skipped.
func (a *app) runSchedule(ctx context.Context, spec string, runNow bool) error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)

	if _, err := c.AddFunc(spec, func() { a.runAll(ctx) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	if runNow {
		a.runAll(ctx)
	}

	c.Start()
	logger.Info("scheduler started", logger.Fields{"cron": spec, "timezone": loc.String()})

	<-ctx.Done()

	logger.Info("scheduler stopping", nil)
	<-c.Stop().Done()

	return nil
}

// runAll runs the calendar builder then the scraper. A failed calendar build
// does not prevent the scrape.
func (a *app) runAll(ctx context.Context) {
	if _, err := a.runCalendar(ctx, a.calendarOptions()); err != nil {
		logger.Warn("scheduled calendar run failed", nil, err)
	}
	if ctx.Err() == nil {
		if _, err := a.runScrape(ctx, a.scrapeOptions()); err != nil {
			logger.Warn("scheduled scrape run failed", nil, err)
		}
	}
	a.writeMetrics()
}

// cronLogger routes cron's own messages to the package logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := make(logger.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
