package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/capetown-events/internal/calendar"
	"github.com/pfrederiksen/capetown-events/internal/event"
	"github.com/pfrederiksen/capetown-events/internal/logger"
)

const defaultFirstThursdaysOutput = "first_thursdays.ics"

var (
	flagYears              []int
	flagFirstThursdaysFile string
)

func newFirstThursdaysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "first-thursdays",
		Short: "Generate the First Thursdays calendar (.ics)",
		Long: `Generate one evening event on the first Thursday of every month for the
given years, in the configured timezone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}

			years := flagYears
			if len(years) == 0 {
				years = a.cfg.FirstThursdayYears(a.now(), loc)
			}

			events, err := event.FirstThursdaysForYears(years, loc)
			if err != nil {
				return err
			}
			a.metrics.CalendarEvents(sourceFirstThursdays, len(events))

			ics := calendar.GenerateICS(events, calendar.Options{Name: event.FirstThursdaysName, Now: a.now})
			path, err := a.store.SaveCalendar(flagFirstThursdaysFile, ics)
			if err != nil {
				return fmt.Errorf("saving calendar: %w", err)
			}
			logger.Info("saved calendar", logger.Fields{"path": path, "events": len(events), "years": years})
			a.writeMetrics()

			return writeCalendarSummary(a.stdout, &calendarResult{
				Path:      path,
				Generated: len(events),
				Events:    events,
			}, loc)
		},
	}

	cmd.Flags().IntSliceVar(&flagYears, "year", nil, "Year to generate (repeatable; default from config or the current year)")
	cmd.Flags().StringVar(&flagFirstThursdaysFile, "output", defaultFirstThursdaysOutput, "Output .ics file")

	return cmd
}
