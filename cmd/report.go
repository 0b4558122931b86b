package cmd

import (
	"github.com/spf13/cobra"

	"realestate-bi/services"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		in        string
		fromStore bool
		filters   string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print summary statistics for a filtered subset of listings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listings, err := a.loadCanonical(cmd.Context(), fromStore, in)
			if err != nil {
				return err
			}

			f := services.DefaultFilter(listings)
			if filters != "" {
				if f, err = services.LoadFilterFile(filters, f); err != nil {
					return err
				}
			}

			report := services.NewAggregator(a.logger).Build(listings, f, a.cfg.PreviewRows)
			printer := services.NewReportPrinter(cmd.OutOrStdout())
			if asJSON {
				return printer.JSON(report)
			}
			printer.Print(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", a.cfg.CleanCSVPath, "canonical CSV to summarise")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "read listings from the configured store instead of --in")
	cmd.Flags().StringVar(&filters, "filters", "", "YAML filter preset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().IntVar(&a.cfg.PreviewRows, "preview", a.cfg.PreviewRows, "number of preview rows")
	cmd.MarkFlagsMutuallyExclusive("in", "from-store")
	return cmd
}
