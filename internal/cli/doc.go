// Package cli implements the command-line interface for ct-events.
//
// The cli package provides the Cobra-based CLI: the calendar command builds the
// stadium .ics file, scrape extracts event dates from the configured websites,
// first-thursdays generates the recurring First Thursdays calendar, and
// schedule runs calendar and scrape on a cron schedule. It coordinates the
// config, stadium, scraper, calendar, storage and metrics packages and formats
// run summaries as text or JSON.
package cli
