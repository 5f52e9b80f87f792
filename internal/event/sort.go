package event

import (
	"sort"

	"golang.org/x/text/cases"
)

// SortByStart orders events by ascending start time.
// Events with no usable start (zero time) are treated as the latest possible
// value and end up after every dated event. Ties keep their input order.
func SortByStart(events []*CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return startsBefore(events[i], events[j])
	})
}

// startsBefore reports whether a should come before b
func startsBefore(a, b *CalendarEvent) bool {
	aZero, bZero := a.Start.IsZero(), b.Start.IsZero()

	switch {
	case aZero && bZero:
		fold := cases.Fold()
		return fold.String(a.Name) < fold.String(b.Name)
	case aZero:
		return false
	case bZero:
		return true
	}

	return a.Start.Before(b.Start)
}
