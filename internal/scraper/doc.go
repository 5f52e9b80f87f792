// Package scraper fetches Cape Town event websites and extracts their event dates.
//
// Each Site names one website and the month-restricted date patterns that suit
// it. Sites are fetched one after another with a shared, explicitly configured
// HTTP client; the visible page text is run through the extract package and the
// results are collected into an event.RunReport in site order. A site that
// cannot be fetched or parsed is logged and left out without stopping the run.
package scraper
