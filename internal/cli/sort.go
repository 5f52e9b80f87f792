package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/capetown-events/internal/event"
)

// SortOrder represents the available sorting options for text output
type SortOrder string

const (
	SortBySite SortOrder = "site"
	SortByDate SortOrder = "date"
	SortByName SortOrder = "name"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortBySite, SortByDate, SortByName:
		return order, nil
	}
	return "", fmt.Errorf("invalid sort order: %s (must be 'site', 'date' or 'name')", s)
}

// sortEntries returns a copy of entries in the requested order. SortBySite
// keeps the configured site order.
func sortEntries(entries []*event.SiteDateExtraction, order SortOrder) []*event.SiteDateExtraction {
	sorted := make([]*event.SiteDateExtraction, len(entries))
	copy(sorted, entries)

	switch order {
	case SortByDate:
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareByDate(sorted[i], sorted[j])
		})
	case SortByName:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	}

	return sorted
}

// compareByDate compares two entries by start date
// Returns true if i should come before j
func compareByDate(i, j *event.SiteDateExtraction) bool {
	iDated, jDated := i.HasDates(), j.HasDates()

	// If only one entry has a date, put the dated one first
	if iDated != jDated {
		return iDated
	}

	// ISO dates order lexically
	if iDated && i.StartDate != j.StartDate {
		return i.StartDate < j.StartDate
	}

	return strings.ToLower(i.Name) < strings.ToLower(j.Name)
}
