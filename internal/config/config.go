// Package config loads the ct-events configuration: a YAML file layered over
// the embedded defaults, then environment overrides.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/capetown-events/internal/extract"
	"github.com/pfrederiksen/capetown-events/internal/scraper"
)

//go:embed default.yaml
var defaultYAML []byte

// Environment variables that override file settings.
const (
	EnvUserAgent   = "CT_EVENTS_USER_AGENT"
	EnvTimezone    = "CT_EVENTS_TIMEZONE"
	EnvStadiumURL  = "CT_EVENTS_STADIUM_URL"
	EnvHTTPTimeout = "CT_EVENTS_HTTP_TIMEOUT"
)

// yearPlaceholder in a site URL is replaced with the current year
const yearPlaceholder = "{year}"

// Configuration validation errors.
var (
	ErrNoSites         = errors.New("scraper.sites must list at least one site")
	ErrSiteMissingName = errors.New("site name is required")
	ErrSiteMissingURL  = errors.New("site url is required")
	ErrInvalidShape    = errors.New("pattern shape is not recognised")
	ErrInvalidMonth    = errors.New("pattern month is not recognised")
	ErrInvalidTimeout  = errors.New("timeouts must be positive")
	ErrInvalidTimezone = errors.New("timezone is not a known IANA zone")
	ErrInvalidSince    = errors.New("calendar.since must be an RFC 3339 timestamp or date")
	ErrInvalidYear     = errors.New("calendar.first_thursdays.years must be between 1 and 9999")
	ErrMissingOutput   = errors.New("output path is required")
	ErrInvalidCron     = errors.New("schedule.cron is not a valid cron expression")
	ErrInvalidOverride = errors.New("invalid environment override")
)

// cronParser accepts six-field expressions with a leading seconds field
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Config represents the complete ct-events configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Timezone string         `yaml:"timezone"`
	Calendar CalendarConfig `yaml:"calendar"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// HTTPConfig holds the client options shared by the site fetches.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// CalendarConfig configures the stadium calendar builder.
type CalendarConfig struct {
	APIURL         string               `yaml:"api_url"`
	Since          string               `yaml:"since"`
	Timeout        time.Duration        `yaml:"timeout"`
	Output         string               `yaml:"output"`
	Name           string               `yaml:"name"`
	UntitledName   string               `yaml:"untitled_name"`
	FirstThursdays FirstThursdaysConfig `yaml:"first_thursdays"`
}

// FirstThursdaysConfig controls the generated First Thursdays events.
type FirstThursdaysConfig struct {
	Enabled bool  `yaml:"enabled"`
	Years   []int `yaml:"years"`
}

// ScraperConfig configures the event-date scraper.
type ScraperConfig struct {
	Output      string       `yaml:"output"`
	EmitUndated bool         `yaml:"emit_undated"`
	Sites       []SiteConfig `yaml:"sites"`
}

// SiteConfig describes one site and its preferred date patterns.
type SiteConfig struct {
	Name     string          `yaml:"name"`
	URL      string          `yaml:"url"`
	Patterns []PatternConfig `yaml:"patterns"`
}

// PatternConfig is one month-restricted date pattern. Month restricts
// single-month shapes; Month1 and Month2 restrict a cross_month range.
type PatternConfig struct {
	Shape  string `yaml:"shape"`
	Month  string `yaml:"month"`
	Month1 string `yaml:"month1"`
	Month2 string `yaml:"month2"`
}

// ScheduleConfig configures the schedule command.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}
	return &cfg, nil
}

// Load reads the configuration. An empty path uses the embedded defaults;
// otherwise the file is layered over them. Environment overrides are applied
// last and the result is validated.
func Load(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv applies environment overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvUserAgent); ok && v != "" {
		c.HTTP.UserAgent = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Timezone = v
	}
	if v, ok := lookup(EnvStadiumURL); ok && v != "" {
		c.Calendar.APIURL = v
	}
	if v, ok := lookup(EnvHTTPTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidOverride, EnvHTTPTimeout, v, err)
		}
		c.HTTP.Timeout = d
	}
	return nil
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.HTTP.Timeout <= 0 || c.Calendar.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.SinceTime(time.Now()); err != nil {
		return err
	}

	for _, y := range c.Calendar.FirstThursdays.Years {
		if y < 1 || y > 9999 {
			return fmt.Errorf("%w: %d", ErrInvalidYear, y)
		}
	}

	if c.Calendar.Output == "" {
		return fmt.Errorf("calendar: %w", ErrMissingOutput)
	}
	if c.Scraper.Output == "" {
		return fmt.Errorf("scraper: %w", ErrMissingOutput)
	}

	if len(c.Scraper.Sites) == 0 {
		return ErrNoSites
	}
	for i, site := range c.Scraper.Sites {
		if strings.TrimSpace(site.Name) == "" {
			return fmt.Errorf("sites[%d]: %w", i, ErrSiteMissingName)
		}
		if strings.TrimSpace(site.URL) == "" {
			return fmt.Errorf("sites[%d] %s: %w", i, site.Name, ErrSiteMissingURL)
		}
		for j, p := range site.Patterns {
			if _, err := p.Pattern(); err != nil {
				return fmt.Errorf("sites[%d] %s patterns[%d]: %w", i, site.Name, j, err)
			}
		}
	}

	if c.Schedule.Cron != "" {
		if _, err := cronParser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCron, err)
		}
	}

	return nil
}

// Location loads the configured timezone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, c.Timezone)
	}
	return loc, nil
}

// SinceTime returns the calendar lower bound; an empty value means now.
func (c *Config) SinceTime(now time.Time) (time.Time, error) {
	return ParseSince(c.Calendar.Since, now)
}

// ParseSince parses an RFC 3339 timestamp or a plain date; empty means now.
func ParseSince(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSince, value)
}

// FirstThursdayYears returns the configured years, or the current year in loc
// when none are listed.
func (c *Config) FirstThursdayYears(now time.Time, loc *time.Location) []int {
	if len(c.Calendar.FirstThursdays.Years) > 0 {
		return c.Calendar.FirstThursdays.Years
	}
	return []int{now.In(loc).Year()}
}

// Sites builds the scraper site list. A {year} placeholder in a URL is
// replaced with the year of now.
func (c *Config) Sites(now time.Time) ([]scraper.Site, error) {
	sites := make([]scraper.Site, 0, len(c.Scraper.Sites))
	year := fmt.Sprintf("%d", now.Year())

	for _, sc := range c.Scraper.Sites {
		patterns := make([]*extract.Pattern, 0, len(sc.Patterns))
		for _, pc := range sc.Patterns {
			p, err := pc.Pattern()
			if err != nil {
				return nil, fmt.Errorf("site %s: %w", sc.Name, err)
			}
			patterns = append(patterns, p)
		}

		sites = append(sites, scraper.Site{
			Name:     strings.TrimSpace(sc.Name),
			URL:      strings.ReplaceAll(strings.TrimSpace(sc.URL), yearPlaceholder, year),
			Patterns: patterns,
		})
	}

	return sites, nil
}

// ClientConfig returns the scraper HTTP options.
func (c *Config) ClientConfig() scraper.ClientConfig {
	return scraper.ClientConfig{
		Timeout:   c.HTTP.Timeout,
		UserAgent: c.HTTP.UserAgent,
	}
}

// Pattern compiles the pattern described by p.
func (p PatternConfig) Pattern() (*extract.Pattern, error) {
	shape, err := extract.ParseShape(p.Shape)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShape, p.Shape)
	}

	first := p.Month1
	if first == "" {
		first = p.Month
	}
	m1, err := ParseMonth(first)
	if err != nil {
		return nil, err
	}
	m2, err := ParseMonth(p.Month2)
	if err != nil {
		return nil, err
	}

	return extract.NewPattern(shape, m1, m2)
}

// ParseMonth parses an English month name or its three-letter abbreviation.
// An empty name returns zero, meaning any month.
func ParseMonth(name string) (time.Month, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}
	for m := time.January; m <= time.December; m++ {
		full := m.String()
		if strings.EqualFold(full, name) || strings.EqualFold(full[:3], name) {
			return m, nil
		}
	}
	if strings.EqualFold(name, "sept") {
		return time.September, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, name)
}
