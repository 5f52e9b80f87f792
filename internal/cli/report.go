package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagReportInput  string
	flagReportFormat string
	flagReportSort   string
)

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the last saved scrape report",
		Long: `Read the JSON report written by the last scrape and print it without
fetching any website.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(flagReportFormat)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(flagReportSort)
			if err != nil {
				return err
			}

			input := a.cfg.Scraper.Output
			if cmd.Flags().Changed("input") {
				input = flagReportInput
			}

			report, err := a.store.LoadReport(input)
			if err != nil {
				return err
			}

			if err := WriteReport(a.stdout, report, format, order); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagReportInput, "input", "", "Report JSON file (default from config)")
	cmd.Flags().StringVar(&flagReportFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagReportSort, "sort", string(SortBySite), "Text output order: site, date or name")

	return cmd
}
