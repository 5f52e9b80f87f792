package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrNoDate is returned when day, month and year tokens do not form a real date
var ErrNoDate = errors.New("no date")

var ordinalSuffix = regexp.MustCompile(`(?i)(st|nd|rd|th)$`)

var (
	fuzzyOnce   sync.Once
	fuzzyParser *when.Parser
)

func fuzzy() *when.Parser {
	fuzzyOnce.Do(func() {
		fuzzyParser = when.New(nil)
		fuzzyParser.Add(en.All...)
		fuzzyParser.Add(common.All...)
	})
	return fuzzyParser
}

// ParseDate turns isolated day, month and year tokens into a date at midnight UTC.
// Ordinal suffixes on the day are ignored. The tokens are read by the
// natural-language parser; a day the month does not have is rejected rather
// than rolled into the next month.
func ParseDate(dayToken, monthToken string, year int) (time.Time, error) {
	dayToken = ordinalSuffix.ReplaceAllString(strings.TrimSpace(dayToken), "")
	d, err := strconv.Atoi(dayToken)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrNoDate, dayToken)
	}

	month, ok := lookupMonth(monthToken)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrNoDate, monthToken)
	}

	text := fmt.Sprintf("%d %s", d, strings.TrimSpace(monthToken))
	base := time.Date(year, time.January, 1, 12, 0, 0, 0, time.UTC)
	r, err := fuzzy().Parse(text, base)
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("%w: %q %d", ErrNoDate, text, year)
	}

	got := r.Time
	if got.Month() != month || got.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q %d", ErrNoDate, text, year)
	}
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC), nil
}

// lookupMonth resolves a full or three-letter month name in any case.
// "Sept" is accepted as well.
func lookupMonth(token string) (time.Month, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "sept" {
		return time.September, true
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if token == name || token == name[:3] {
			return m, true
		}
	}
	return 0, false
}
