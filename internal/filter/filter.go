// Package filter narrows calendar events and scraper sites before output.
//
// Criteria combine with AND:
//   - Date range: the event start must fall within From and To (inclusive)
//   - Names: the event name must contain at least one entry (case-insensitive)
//   - Weekends only: the event must start on a Saturday or Sunday
//
// Weekdays are judged in the filter's Location so that an evening event in
// Cape Town is not moved to the next day by a UTC start time.
//
// Example usage:
//
//	f := filter.NewFilter(loc)
//	f.WeekendsOnly = true
//	f.Names = []string{"Stormers"}
//	events = f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	From *time.Time
	To   *time.Time

	// Names are matched as case-insensitive substrings of the event name
	Names []string

	WeekendsOnly bool

	// Location is used for weekday checks; nil means UTC
	Location *time.Location
}

// NewFilter creates an empty filter that matches every event
func NewFilter(loc *time.Location) *Filter {
	return &Filter{
		Names:    []string{},
		Location: loc,
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return f.From == nil &&
		f.To == nil &&
		len(f.Names) == 0 &&
		!f.WeekendsOnly
}

// Matches checks if an event passes all active criteria.
// An empty filter matches all events.
func (f *Filter) Matches(evt *event.CalendarEvent) bool {
	if f.IsEmpty() {
		return true
	}

	if f.From != nil && evt.Start.Before(*f.From) {
		return false
	}
	if f.To != nil && evt.Start.After(*f.To) {
		return false
	}

	if f.WeekendsOnly {
		loc := f.Location
		if loc == nil {
			loc = time.UTC
		}
		switch evt.Start.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			return false
		}
	}

	return f.MatchesName(evt.Name)
}

// MatchesName reports whether name contains one of the filter's names.
// It is true when no names are set.
func (f *Filter) MatchesName(name string) bool {
	if len(f.Names) == 0 {
		return true
	}

	fold := cases.Fold()
	folded := fold.String(name)
	for _, n := range f.Names {
		if strings.Contains(folded, fold.String(strings.TrimSpace(n))) {
			return true
		}
	}
	return false
}

// Apply returns the events that match, keeping their order.
// If the filter is empty, the original slice is returned unchanged.
func (f *Filter) Apply(events []*event.CalendarEvent) []*event.CalendarEvent {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.CalendarEvent, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "From: Jan 2, 2026 | To: Jan 15, 2026 | Names: Stormers | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.From != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.From.Format("Jan 2, 2006")))
	}

	if f.To != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.To.Format("Jan 2, 2006")))
	}

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}

	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}
