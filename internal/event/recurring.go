package event

import (
	"fmt"
	"time"

	"github.com/xyedo/rrule"
)

const (
	FirstThursdaysName        = "First Thursdays"
	FirstThursdaysDescription = "Galleries, shops and bars in the Cape Town city centre stay open late on the first Thursday of every month."

	firstThursdaysStartHour = 16
	firstThursdaysEndHour   = 23
)

// FirstThursdays returns the twelve First Thursdays events of year, one per
// month, running 16:00 to 23:00 in loc. A nil loc means time.Local.
func FirstThursdays(year int, loc *time.Location) ([]*CalendarEvent, error) {
	if year < 1 || year > 9999 {
		return nil, fmt.Errorf("first thursdays: year %d out of range", year)
	}
	if loc == nil {
		loc = time.Local
	}

	// The rule only picks the day; hours are applied in loc afterwards.
	rule := fmt.Sprintf("DTSTART:%04d0101T000000Z\nRRULE:FREQ=MONTHLY;COUNT=12;BYDAY=1TH", year)
	set, err := rrule.StrToRRuleSet(rule)
	if err != nil {
		return nil, fmt.Errorf("first thursdays rule: %w", err)
	}

	dates := set.All()
	events := make([]*CalendarEvent, 0, len(dates))
	for _, d := range dates {
		start := time.Date(d.Year(), d.Month(), d.Day(), firstThursdaysStartHour, 0, 0, 0, loc)
		end := time.Date(d.Year(), d.Month(), d.Day(), firstThursdaysEndHour, 0, 0, 0, loc)
		events = append(events, &CalendarEvent{
			Name:        FirstThursdaysName,
			Description: FirstThursdaysDescription,
			Start:       start,
			End:         end,
		})
	}

	return events, nil
}

// FirstThursdaysForYears concatenates FirstThursdays for each year in order
func FirstThursdaysForYears(years []int, loc *time.Location) ([]*CalendarEvent, error) {
	var all []*CalendarEvent
	for _, year := range years {
		events, err := FirstThursdays(year, loc)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}
