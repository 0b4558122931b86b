package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"realestate-bi/api"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		in        string
		fromStore bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve filter and summary endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			listings, err := a.loadCanonical(ctx, fromStore, in)
			if err != nil {
				return err
			}
			return api.NewServer(listings, a.cfg.PreviewRows, a.logger).Start(ctx, a.cfg.HTTPAddr)
		},
	}
	cmd.Flags().StringVar(&in, "in", a.cfg.CleanCSVPath, "canonical CSV to serve")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "read listings from the configured store instead of --in")
	cmd.Flags().StringVar(&a.cfg.HTTPAddr, "addr", a.cfg.HTTPAddr, "listen address")
	cmd.Flags().IntVar(&a.cfg.PreviewRows, "preview", a.cfg.PreviewRows, "default number of report preview rows")
	cmd.MarkFlagsMutuallyExclusive("in", "from-store")
	return cmd
}
