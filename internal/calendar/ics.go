// Package calendar writes CalendarEvents as an iCalendar (RFC 5545) document.
package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

const (
	ProdID = "-//Cape Town Events//ct-events//EN"

	// maxLineOctets is the longest content line before folding
	maxLineOctets = 75
)

// uidNamespace scopes the name-based UIDs of generated events
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/capetown-events"))

// Options tune the generated calendar
type Options struct {
	// Name is written as X-WR-CALNAME when set
	Name string
	// Now stamps DTSTAMP; defaults to time.Now
	Now func() time.Time
}

// GenerateICS renders events in the given order as one VCALENDAR
func GenerateICS(events []*event.CalendarEvent, opts Options) string {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	stamp := formatICSTime(opts.Now())

	var ics strings.Builder

	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:"+ProdID)
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if opts.Name != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(opts.Name))
	}

	for _, evt := range events {
		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, "UID:"+UID(evt))
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, "DTSTART:"+formatICSTime(evt.Start))
		writeLine(&ics, "DTEND:"+formatICSTime(evt.End))
		writeLine(&ics, "SUMMARY:"+escapeICS(evt.Name))
		if evt.Description != "" {
			writeLine(&ics, "DESCRIPTION:"+escapeICS(evt.Description))
		}
		if evt.URL != "" {
			writeLine(&ics, "URL:"+evt.URL)
		}
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")

	return ics.String()
}

// UID returns a stable identifier derived from the event name and start, so
// regenerating a calendar does not create duplicates in subscribed clients.
func UID(evt *event.CalendarEvent) string {
	key := evt.Name + "|" + evt.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@ct-events"
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar text values
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\n")
	return s
}

// writeLine writes one content line, folded at 75 octets without splitting a
// UTF-8 sequence, and terminated with CRLF.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		fmt.Fprintf(b, "%s\r\n ", line[:cut])
		line = line[cut:]
		// continuation lines carry a leading space
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
