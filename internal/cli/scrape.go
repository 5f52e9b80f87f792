package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/capetown-events/internal/event"
	"github.com/pfrederiksen/capetown-events/internal/extract"
	"github.com/pfrederiksen/capetown-events/internal/filter"
	"github.com/pfrederiksen/capetown-events/internal/logger"
	"github.com/pfrederiksen/capetown-events/internal/scraper"
)

const pipelineScrape = "scrape"

var (
	flagScrapeOutput string
	flagFormat       string
	flagSort         string
	flagEmitUndated  bool
	flagSites        []string
)

type scrapeOptions struct {
	output      string
	emitUndated bool
	sites       []string // name substrings; empty means every site
}

func newScrapeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Extract event dates from the configured websites",
		Long: `Fetch each configured event website in turn, find its event date range
and write the results to a JSON report. Sites that cannot be fetched are
skipped; the run never stops on a single site.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(flagFormat)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(flagSort)
			if err != nil {
				return err
			}

			opts := a.scrapeOptions()
			if cmd.Flags().Changed("output") {
				opts.output = flagScrapeOutput
			}
			if cmd.Flags().Changed("emit-undated") {
				opts.emitUndated = flagEmitUndated
			}
			opts.sites = flagSites

			report, err := a.runScrape(cmd.Context(), opts)
			a.writeMetrics()
			if err != nil {
				return err
			}

			if err := WriteReport(a.stdout, report, format, order); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagScrapeOutput, "output", "", "Output JSON file (default from config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortBySite), "Text output order: site, date or name")
	cmd.Flags().BoolVar(&flagEmitUndated, "emit-undated", true, "Include sites without a date in the report")
	cmd.Flags().StringSliceVar(&flagSites, "site", nil, "Only scrape sites whose name contains this text (repeatable)")

	return cmd
}

// scrapeOptions returns the scrape options configured in the file
func (a *app) scrapeOptions() scrapeOptions {
	return scrapeOptions{
		output:      a.cfg.Scraper.Output,
		emitUndated: a.cfg.Scraper.EmitUndated,
	}
}

// runScrape scrapes every configured site and saves the report
func (a *app) runScrape(ctx context.Context, opts scrapeOptions) (*event.RunReport, error) {
	started := a.now()

	sites, err := a.cfg.Sites(started)
	if err != nil {
		a.metrics.RunFinished(pipelineScrape, started, false)
		return nil, err
	}

	if len(opts.sites) > 0 {
		f := filter.NewFilter(nil)
		f.Names = opts.sites
		selected := make([]scraper.Site, 0, len(sites))
		for _, site := range sites {
			if f.MatchesName(site.Name) {
				selected = append(selected, site)
			}
		}
		if len(selected) == 0 {
			a.metrics.RunFinished(pipelineScrape, started, false)
			return nil, fmt.Errorf("no configured site matches %v", opts.sites)
		}
		sites = selected
	}

	s := scraper.New(
		scraper.NewFetcher(a.cfg.ClientConfig()),
		extract.NewWithClock(a.now),
		scraper.Options{
			EmitUndated: opts.emitUndated,
			Metrics:     a.metrics,
			Now:         a.now,
		},
	)
	report := s.Run(ctx, sites)

	path, err := a.store.SaveReport(opts.output, report)
	if err != nil {
		a.metrics.RunFinished(pipelineScrape, started, false)
		return nil, fmt.Errorf("saving report: %w", err)
	}

	logger.Info("saved events", logger.Fields{
		"path":   path,
		"events": len(report.Events),
		"dated":  report.DatedCount(),
	})
	a.metrics.RunFinished(pipelineScrape, started, true)

	return report, nil
}
