package event

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultTitle is used when a stadium event has a blank title
const DefaultTitle = "No title"

// ErrInvalidTimestamp is returned when a date range holds a value that is not an ISO-8601 timestamp
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// DateRange is one start/end pair of a stadium event. Either side may be missing.
type DateRange struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

// RawEventRecord is an event as published by the stadium API
type RawEventRecord struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	ExternalLink *string     `json:"externallink"`
	DateRanges   []DateRange `json:"daterange"`
}

// CalendarEvent is a single calendar entry. End is never before Start.
type CalendarEvent struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	URL         string    `json:"url,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp as served by the stadium API.
// Values without a zone offset are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// EndOfDay returns 23:59:59 on the calendar day of t, in t's location
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Normalize converts one stadium record into calendar events, one per date range.
//
// Ranges without a start are skipped. A missing end, or one that is not after the
// start, becomes 23:59:59 of the start day. A blank title is replaced by untitled,
// or DefaultTitle when untitled is empty. Unparseable timestamps are returned as
// errors wrapping ErrInvalidTimestamp.
func Normalize(rec RawEventRecord, untitled string) ([]*CalendarEvent, error) {
	if untitled == "" {
		untitled = DefaultTitle
	}

	name := strings.TrimSpace(rec.Title)
	if name == "" {
		name = untitled
	}

	url := ""
	if rec.ExternalLink != nil {
		url = strings.TrimSpace(*rec.ExternalLink)
	}

	events := make([]*CalendarEvent, 0, len(rec.DateRanges))
	for i, dr := range rec.DateRanges {
		if dr.Start == nil || strings.TrimSpace(*dr.Start) == "" {
			continue
		}

		start, err := ParseTimestamp(*dr.Start)
		if err != nil {
			return nil, fmt.Errorf("event %q range %d start: %w", name, i, err)
		}

		end := EndOfDay(start)
		if dr.End != nil && strings.TrimSpace(*dr.End) != "" {
			parsed, err := ParseTimestamp(*dr.End)
			if err != nil {
				return nil, fmt.Errorf("event %q range %d end: %w", name, i, err)
			}
			if parsed.After(start) {
				end = parsed
			}
		}
		// a start in the last second of the day would otherwise end before it begins
		if end.Before(start) {
			end = start
		}

		events = append(events, &CalendarEvent{
			Name:        name,
			Description: rec.Description,
			Start:       start,
			End:         end,
			URL:         url,
		})
	}

	return events, nil
}

// NormalizeAll normalizes every record into one flat list, in input order.
// The first unparseable timestamp aborts the whole batch.
func NormalizeAll(records []RawEventRecord, untitled string) ([]*CalendarEvent, error) {
	all := make([]*CalendarEvent, 0, len(records))
	for _, rec := range records {
		events, err := Normalize(rec, untitled)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}
