// Package extract finds event date ranges in the visible text of a web page.
//
// A date phrase has one of five shapes (cross-month range, single-month range,
// month-first range, day-first single day, month-first single day). Patterns
// are tried in priority order and the first phrase whose year is the current
// or the following year wins. Sites can put month-restricted patterns ahead of
// the generic set so a known event month pre-empts an unrelated date.
package extract
