// Package storage persists run outputs: the scraper's JSON date report and
// the calendar builder's .ics file.
//
// Each run overwrites its output in place. Files are written to a temporary
// sibling first and renamed over the target, so a crashed run never leaves a
// half-written report behind. Relative output names resolve against the
// storage directory; a leading ~/ expands to the user's home directory.
package storage
