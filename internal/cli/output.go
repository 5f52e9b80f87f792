package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// undatedMark stands in for a missing date in text output
const undatedMark = "-"

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// WriteReport writes the scrape report in the specified format
func WriteReport(w io.Writer, report *event.RunReport, format OutputFormat, order SortOrder) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeReportText(w, report, order)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs v as indented JSON without HTML escaping
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeReportText outputs the report as an aligned table
func writeReportText(w io.Writer, report *event.RunReport, order SortOrder) error {
	if len(report.Events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	entries := sortEntries(report.Events, order)

	nameWidth := runewidth.StringWidth("EVENT")
	for _, e := range entries {
		if n := runewidth.StringWidth(e.Name); n > nameWidth {
			nameWidth = n
		}
	}

	fmt.Fprintf(w, "%s  %-10s  %-10s  %s\n", runewidth.FillRight("EVENT", nameWidth), "START", "END", "URL")
	for _, e := range entries {
		start, end := e.StartDate, e.EndDate
		if !e.HasDates() {
			start, end = undatedMark, undatedMark
		}
		fmt.Fprintf(w, "%s  %-10s  %-10s  %s\n", runewidth.FillRight(e.Name, nameWidth), start, end, e.URL)
	}

	fmt.Fprintf(w, "\nTotal: %d events, %d dated (updated %s)\n", len(report.Events), report.DatedCount(), report.Updated)
	return nil
}

// writeCalendarSummary lists the events written to a calendar file, with
// times shown in loc
func writeCalendarSummary(w io.Writer, res *calendarResult, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}

	fmt.Fprintf(w, "Wrote %d events to %s\n", len(res.Events), res.Path)
	if len(res.Events) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	for _, evt := range res.Events {
		start := evt.Start.In(loc)
		fmt.Fprintf(w, "  %s  %s\n", start.Format("Mon 02 Jan 2006 15:04"), evt.Name)
	}

	if res.Generated > 0 {
		fmt.Fprintf(w, "\nTotal: %d stadium, %d generated\n", res.Stadium, res.Generated)
	} else {
		fmt.Fprintf(w, "\nTotal: %d stadium\n", res.Stadium)
	}
	return nil
}
