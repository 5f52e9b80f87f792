package extract

import (
	"strconv"
	"time"
)

// Result is a day-precision date range found in page text
type Result struct {
	Start time.Time
	End   time.Time
	Shape Shape
}

// StartDate returns the start as an ISO date
func (r Result) StartDate() string {
	return r.Start.Format("2006-01-02")
}

// EndDate returns the end as an ISO date
func (r Result) EndDate() string {
	return r.End.Format("2006-01-02")
}

// Extractor applies ordered date patterns to text
type Extractor struct {
	now     func() time.Time
	generic []*Pattern
}

// New creates an Extractor using the wall clock for the recency filter
func New() *Extractor {
	return NewWithClock(time.Now)
}

// NewWithClock creates an Extractor whose notion of the current year comes from now
func NewWithClock(now func() time.Time) *Extractor {
	return &Extractor{
		now:     now,
		generic: GenericPatterns(),
	}
}

// IsRecent reports whether year is the current year or the next one
func (e *Extractor) IsRecent(year int) bool {
	current := e.now().Year()
	return current <= year && year <= current+1
}

// Extract tries the site patterns, then the generic patterns, and returns the
// first usable date range. A phrase is unusable when its year fails the recency
// filter or its tokens are not a real date; the next phrase is then tried.
func (e *Extractor) Extract(text string, site []*Pattern) (Result, bool) {
	if r, ok := e.try(text, site); ok {
		return r, true
	}
	return e.try(text, e.generic)
}

func (e *Extractor) try(text string, patterns []*Pattern) (Result, bool) {
	for _, p := range patterns {
		for _, ph := range p.phrases(text) {
			if r, ok := e.resolve(p.shape, ph); ok {
				return r, true
			}
		}
	}
	return Result{}, false
}

func (e *Extractor) resolve(shape Shape, ph phrase) (Result, bool) {
	year, err := strconv.Atoi(ph.year)
	if err != nil || !e.IsRecent(year) {
		return Result{}, false
	}

	start, err := ParseDate(ph.day1, ph.month1, year)
	if err != nil {
		return Result{}, false
	}
	end, err := ParseDate(ph.day2, ph.month2, year)
	if err != nil {
		return Result{}, false
	}

	if end.Before(start) {
		if shape != CrossMonthRange {
			return Result{}, false
		}
		// "28 Dec – 3 Jan 2026": the year printed belongs to the end
		start, err = ParseDate(ph.day1, ph.month1, year-1)
		if err != nil || end.Before(start) {
			return Result{}, false
		}
	}

	return Result{Start: start, End: end, Shape: shape}, true
}
