package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/capetown-events/internal/calendar"
	"github.com/pfrederiksen/capetown-events/internal/config"
	"github.com/pfrederiksen/capetown-events/internal/event"
	"github.com/pfrederiksen/capetown-events/internal/filter"
	"github.com/pfrederiksen/capetown-events/internal/logger"
	"github.com/pfrederiksen/capetown-events/internal/stadium"
)

const (
	pipelineCalendar = "calendar"

	sourceStadium        = "stadium"
	sourceFirstThursdays = "first_thursdays"
)

var (
	flagCalendarOutput string
	flagSince          string
	flagFirstThursdays bool
	flagMatch          []string
	flagWeekendsOnly   bool
	flagFrom           string
	flagUntil          string
)

type calendarOptions struct {
	output         string
	since          string
	firstThursdays bool
	filter         *filter.Filter
}

// calendarResult summarizes one calendar build
type calendarResult struct {
	Path      string                 `json:"path"`
	Stadium   int                    `json:"stadium_events"`
	Generated int                    `json:"generated_events"`
	Events    []*event.CalendarEvent `json:"events"`
}

func newCalendarCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Build the stadium events calendar (.ics)",
		Long: `Fetch upcoming events from the stadium API, normalize their date ranges
and write them, sorted by start time, to an iCalendar file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.calendarOptions()
			if cmd.Flags().Changed("output") {
				opts.output = flagCalendarOutput
			}
			if cmd.Flags().Changed("since") {
				opts.since = flagSince
			}
			if cmd.Flags().Changed("first-thursdays") {
				opts.firstThursdays = flagFirstThursdays
			}

			f, err := a.calendarFilter()
			if err != nil {
				return err
			}
			opts.filter = f

			res, err := a.runCalendar(cmd.Context(), opts)
			a.writeMetrics()
			if err != nil {
				return err
			}

			loc, _ := a.cfg.Location()
			return writeCalendarSummary(a.stdout, res, loc)
		},
	}

	cmd.Flags().StringVar(&flagCalendarOutput, "output", "", "Output .ics file (default from config)")
	cmd.Flags().StringVar(&flagSince, "since", "", "Only events starting at or after this RFC 3339 time (default: now)")
	cmd.Flags().BoolVar(&flagFirstThursdays, "first-thursdays", false, "Add First Thursdays events to the calendar")
	cmd.Flags().StringSliceVar(&flagMatch, "match", nil, "Only events whose name contains this text (repeatable)")
	cmd.Flags().BoolVar(&flagWeekendsOnly, "weekends-only", false, "Only events starting on a Saturday or Sunday")
	cmd.Flags().StringVar(&flagFrom, "from", "", "Only events starting on or after this date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&flagUntil, "until", "", "Only events starting on or before this date (YYYY-MM-DD or RFC 3339)")

	return cmd
}

// calendarOptions returns the calendar options configured in the file
func (a *app) calendarOptions() calendarOptions {
	return calendarOptions{
		output:         a.cfg.Calendar.Output,
		since:          a.cfg.Calendar.Since,
		firstThursdays: a.cfg.Calendar.FirstThursdays.Enabled,
	}
}

// calendarFilter builds the event filter from the command flags
func (a *app) calendarFilter() (*filter.Filter, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	f := filter.NewFilter(loc)
	f.Names = flagMatch
	f.WeekendsOnly = flagWeekendsOnly

	if flagFrom != "" {
		from, err := parseDateBound(flagFrom, loc, false)
		if err != nil {
			return nil, fmt.Errorf("invalid --from: %w", err)
		}
		f.From = &from
	}
	if flagUntil != "" {
		until, err := parseDateBound(flagUntil, loc, true)
		if err != nil {
			return nil, fmt.Errorf("invalid --until: %w", err)
		}
		f.To = &until
	}

	return f, nil
}

// parseDateBound parses a --from or --until value. A plain date is a day in
// loc; as an upper bound it covers that whole day. RFC 3339 values are exact.
func parseDateBound(value string, loc *time.Location, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(event.DateLayout, value, loc); err == nil {
		if endOfDay {
			return event.EndOfDay(t), nil
		}
		return t, nil
	}

	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC 3339", value)
	}
	return t, nil
}

// runCalendar fetches, normalizes, sorts and writes the calendar. Nothing is
// written when a record holds an invalid timestamp.
func (a *app) runCalendar(ctx context.Context, opts calendarOptions) (*calendarResult, error) {
	started := a.now()
	res, err := a.buildCalendar(ctx, opts, started)
	a.metrics.RunFinished(pipelineCalendar, started, err == nil)
	if err != nil {
		logger.Error("calendar build failed", nil, err)
		return nil, err
	}
	return res, nil
}

func (a *app) buildCalendar(ctx context.Context, opts calendarOptions, now time.Time) (*calendarResult, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	since, err := config.ParseSince(opts.since, now)
	if err != nil {
		return nil, err
	}

	client := stadium.NewClient(a.cfg.Calendar.APIURL, a.cfg.HTTP.UserAgent, a.cfg.Calendar.Timeout)
	records, err := client.Events(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("fetching stadium events: %w", err)
	}
	logger.Info("fetched stadium events", logger.Fields{"records": len(records), "since": since.UTC().Format(time.RFC3339)})

	events, err := event.NormalizeAll(records, a.cfg.Calendar.UntitledName)
	if err != nil {
		return nil, fmt.Errorf("normalizing stadium events: %w", err)
	}
	res := &calendarResult{Stadium: len(events)}
	a.metrics.CalendarEvents(sourceStadium, len(events))

	if opts.firstThursdays {
		generated, err := event.FirstThursdaysForYears(a.cfg.FirstThursdayYears(now, loc), loc)
		if err != nil {
			return nil, err
		}
		res.Generated = len(generated)
		a.metrics.CalendarEvents(sourceFirstThursdays, len(generated))
		events = append(events, generated...)
	}

	event.SortByStart(events)

	if opts.filter != nil && !opts.filter.IsEmpty() {
		before := len(events)
		events = opts.filter.Apply(events)
		logger.Info("filtered calendar events", logger.Fields{
			"filter": opts.filter.String(),
			"kept":   len(events),
			"before": before,
		})
	}

	ics := calendar.GenerateICS(events, calendar.Options{Name: a.cfg.Calendar.Name, Now: a.now})
	path, err := a.store.SaveCalendar(opts.output, ics)
	if err != nil {
		return nil, fmt.Errorf("saving calendar: %w", err)
	}

	logger.Info("saved calendar", logger.Fields{"path": path, "events": len(events)})

	res.Path = path
	res.Events = events
	return res, nil
}
