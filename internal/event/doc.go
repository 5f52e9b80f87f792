// Package event provides the calendar and scrape-report types for Cape Town events.
//
// Stadium API records are turned into CalendarEvent values by Normalize, which
// fills in a missing or non-later end with 23:59:59 of the start day. Events are
// ordered with SortByStart, and FirstThursdays produces the monthly First
// Thursdays entries for a year. SiteDateExtraction and RunReport describe the
// output of the event-date scraper.
package event
