package event

import "time"

// DateLayout is the day-precision ISO format used for scraped dates
const DateLayout = "2006-01-02"

// SiteDateExtraction is the scraped date range of one event website.
// StartDate and EndDate are empty when no date was found.
type SiteDateExtraction struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Shape     string `json:"-"` // which date phrase matched
}

// HasDates reports whether a date range was found
func (s *SiteDateExtraction) HasDates() bool {
	return s.StartDate != "" && s.EndDate != ""
}

// RunReport is the result of one scraper run
type RunReport struct {
	Updated string                `json:"updated"`
	Events  []*SiteDateExtraction `json:"events"`
}

// NewRunReport creates an empty report stamped with the given time in UTC
func NewRunReport(updated time.Time) *RunReport {
	return &RunReport{
		Updated: updated.UTC().Format(time.RFC3339),
		Events:  make([]*SiteDateExtraction, 0),
	}
}

// DatedCount returns how many entries carry a date range
func (r *RunReport) DatedCount() int {
	n := 0
	for _, e := range r.Events {
		if e.HasDates() {
			n++
		}
	}
	return n
}
