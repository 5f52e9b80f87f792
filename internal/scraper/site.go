package scraper

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/capetown-events/internal/event"
	"github.com/pfrederiksen/capetown-events/internal/extract"
	"github.com/pfrederiksen/capetown-events/internal/logger"
	"github.com/pfrederiksen/capetown-events/internal/metrics"
)

// Site describes one event website to scrape
type Site struct {
	Name     string
	URL      string
	Patterns []*extract.Pattern // tried before the generic patterns
}

// PageFetcher downloads a page body
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options tune a Scraper
type Options struct {
	// EmitUndated keeps sites without a date in the report, with blank dates
	EmitUndated bool
	Metrics     *metrics.Recorder
	Now         func() time.Time
}

// Scraper runs the extraction over a list of sites
type Scraper struct {
	fetcher   PageFetcher
	extractor *extract.Extractor
	opts      Options
}

// New creates a Scraper
func New(fetcher PageFetcher, extractor *extract.Extractor, opts Options) *Scraper {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scraper{
		fetcher:   fetcher,
		extractor: extractor,
		opts:      opts,
	}
}

// Run scrapes every site in order and returns the report. Fetch failures are
// logged as warnings and extraction failures as errors; either way the site
// is skipped and the remaining sites still run.
func (s *Scraper) Run(ctx context.Context, sites []Site) *event.RunReport {
	report := event.NewRunReport(s.opts.Now())

	for _, site := range sites {
		if ctx.Err() != nil {
			logger.Warn("scrape interrupted", logger.Fields{"remaining_from": site.Name}, ctx.Err())
			break
		}

		fields := logger.Fields{"site": site.Name, "url": site.URL}

		body, err := s.fetcher.Fetch(ctx, site.URL)
		if err != nil {
			logger.Warn("failed to fetch site", fields, err)
			s.count(site.Name, metrics.ResultFetchFail)
			continue
		}

		rec, err := s.ExtractSite(site, body)
		if err != nil {
			logger.Error("extractor error", fields, err)
			s.count(site.Name, metrics.ResultError)
			continue
		}

		if !rec.HasDates() {
			logger.Warn("no valid dates found", fields, nil)
			s.count(site.Name, metrics.ResultNoDate)
			if !s.opts.EmitUndated {
				continue
			}
		} else {
			logger.Info("site dates", logger.Fields{
				"site":  site.Name,
				"start": rec.StartDate,
				"end":   rec.EndDate,
			})
			logger.Debug("matched date phrase", logger.Fields{"site": site.Name, "shape": rec.Shape})
			s.count(site.Name, metrics.ResultOK)
		}

		report.Events = append(report.Events, rec)
	}

	return report
}

// ExtractSite finds the event dates in an already fetched page
func (s *Scraper) ExtractSite(site Site, body []byte) (*event.SiteDateExtraction, error) {
	text, err := VisibleText(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", site.Name, err)
	}

	rec := &event.SiteDateExtraction{
		Name: site.Name,
		URL:  site.URL,
	}

	if r, ok := s.extractor.Extract(text, site.Patterns); ok {
		rec.StartDate = r.StartDate()
		rec.EndDate = r.EndDate()
		rec.Shape = r.Shape.String()
	}

	return rec, nil
}

func (s *Scraper) count(site, result string) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.SiteResult(site, result)
	}
}
