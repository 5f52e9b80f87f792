package extract

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Shape identifies the layout of a date phrase
type Shape int

const (
	// CrossMonthRange is "30 Sep – 1 Oct 2025"
	CrossMonthRange Shape = iota + 1
	// DayRange is "18 - 19 October 2025"
	DayRange
	// MonthFirstRange is "October 18–19, 2025"
	MonthFirstRange
	// DayFirst is "15th of March 2025"
	DayFirst
	// MonthFirst is "March 15th, 2025"
	MonthFirst
)

var shapeNames = map[Shape]string{
	CrossMonthRange: "cross_month",
	DayRange:        "day_range",
	MonthFirstRange: "month_first_range",
	DayFirst:        "day_first",
	MonthFirst:      "month_first",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ParseShape returns the Shape for a config name such as "day_range"
func ParseShape(name string) (Shape, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for shape, n := range shapeNames {
		if n == name {
			return shape, nil
		}
	}
	return 0, fmt.Errorf("unknown date shape %q", name)
}

const (
	ordinal   = `(?:st|nd|rd|th)?`
	separator = `(?:-|–|—|to|until|through|thru)`
	firstDay  = `\b(\d{1,2})` + ordinal
	day       = `(\d{1,2})` + ordinal
	year      = `(20\d{2})\b`
	yearTail  = `\s*,?\s*` + year
)

var monthExprs = map[time.Month]string{
	time.January:   `Jan(?:uary)?`,
	time.February:  `Feb(?:ruary)?`,
	time.March:     `Mar(?:ch)?`,
	time.April:     `Apr(?:il)?`,
	time.May:       `May`,
	time.June:      `Jun(?:e)?`,
	time.July:      `Jul(?:y)?`,
	time.August:    `Aug(?:ust)?`,
	time.September: `Sep(?:t(?:ember)?)?`,
	time.October:   `Oct(?:ober)?`,
	time.November:  `Nov(?:ember)?`,
	time.December:  `Dec(?:ember)?`,
}

// monthGroup returns a capturing group for month m, or any month when m is zero
func monthGroup(m time.Month) string {
	if expr, ok := monthExprs[m]; ok {
		return "(" + expr + ")"
	}
	all := make([]string, 0, 12)
	for mm := time.January; mm <= time.December; mm++ {
		all = append(all, monthExprs[mm])
	}
	return "(" + strings.Join(all, "|") + ")"
}

// phrase holds the tokens isolated from one match
type phrase struct {
	day1, month1 string
	day2, month2 string
	year         string
}

// Pattern is one date shape compiled to a case-insensitive regular expression
type Pattern struct {
	shape Shape
	re    *regexp.Regexp
}

// NewPattern builds a pattern for shape. month1 restricts the (first) month and
// month2 the second month of a CrossMonthRange; zero means any month.
func NewPattern(shape Shape, month1, month2 time.Month) (*Pattern, error) {
	m1, m2 := monthGroup(month1), monthGroup(month2)

	var expr string
	switch shape {
	case CrossMonthRange:
		expr = firstDay + `\s*` + m1 + `\s*` + separator + `\s*` + day + `\s*` + m2 + yearTail
	case DayRange:
		expr = firstDay + `\s*` + separator + `\s*` + day + `\s*(?:of\s+)?` + m1 + yearTail
	case MonthFirstRange:
		expr = m1 + `\s+` + day + `\s*` + separator + `\s*` + day + yearTail
	case DayFirst:
		expr = firstDay + `\s*(?:of\s+)?` + m1 + yearTail
	case MonthFirst:
		expr = m1 + `\s+` + day + yearTail
	default:
		return nil, fmt.Errorf("unknown date shape %d", int(shape))
	}

	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		return nil, fmt.Errorf("compiling %s pattern: %w", shape, err)
	}
	return &Pattern{shape: shape, re: re}, nil
}

// MustPattern is like NewPattern but panics on error
func MustPattern(shape Shape, month1, month2 time.Month) *Pattern {
	p, err := NewPattern(shape, month1, month2)
	if err != nil {
		panic(err)
	}
	return p
}

// Shape returns the date shape this pattern matches
func (p *Pattern) Shape() Shape {
	return p.shape
}

func (p *Pattern) String() string {
	return p.re.String()
}

// phrases returns every match in text, leftmost first
func (p *Pattern) phrases(text string) []phrase {
	matches := p.re.FindAllStringSubmatch(text, -1)
	out := make([]phrase, 0, len(matches))
	for _, m := range matches {
		out = append(out, p.shape.tokens(m))
	}
	return out
}

// tokens maps the positional groups of a match onto a phrase
func (s Shape) tokens(m []string) phrase {
	switch s {
	case CrossMonthRange:
		return phrase{day1: m[1], month1: m[2], day2: m[3], month2: m[4], year: m[5]}
	case DayRange:
		return phrase{day1: m[1], month1: m[3], day2: m[2], month2: m[3], year: m[4]}
	case MonthFirstRange:
		return phrase{day1: m[2], month1: m[1], day2: m[3], month2: m[1], year: m[4]}
	case DayFirst:
		return phrase{day1: m[1], month1: m[2], day2: m[1], month2: m[2], year: m[3]}
	case MonthFirst:
		return phrase{day1: m[2], month1: m[1], day2: m[2], month2: m[1], year: m[3]}
	}
	return phrase{}
}

// GenericPatterns returns the fallback patterns in priority order
func GenericPatterns() []*Pattern {
	return []*Pattern{
		MustPattern(CrossMonthRange, 0, 0),
		MustPattern(DayRange, 0, 0),
		MustPattern(MonthFirstRange, 0, 0),
		MustPattern(DayFirst, 0, 0),
		MustPattern(MonthFirst, 0, 0),
	}
}
