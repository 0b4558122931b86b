package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"realestate-bi/config"
	"realestate-bi/services"
	"realestate-bi/storage"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Clean a raw listings export into the canonical CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.logger

			logger.Info("=== Listing normalization starting ===")
			raw, err := storage.NewRawCSVReader(logger).ReadFile(in)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				logger.Warn("%s has a header but no rows", in)
			}

			listings := services.NewNormalizer(logger, a.cfg.NormalizeWorkers).Normalize(raw)

			var w storage.ListingWriter
			w, err = storage.NewCSVWriter(out)
			if err != nil {
				return err
			}
			if err := w.Write(listings); err != nil {
				_ = w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			logger.Info("Canonical listings saved to %s", out)

			if a.cfg.StoreDriver == config.StoreNone {
				return nil
			}
			s, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.Write(ctx, listings); err != nil {
				return fmt.Errorf("persist listings: %w", err)
			}
			logger.Info("Canonical listings stored in %s (table: listings)", a.cfg.StoreDriver)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", a.cfg.RawCSVPath, "raw listings export (CSV)")
	cmd.Flags().StringVar(&out, "out", a.cfg.CleanCSVPath, "canonical CSV output path")
	cmd.Flags().IntVar(&a.cfg.NormalizeWorkers, "workers", a.cfg.NormalizeWorkers, "normalization worker goroutines")
	return cmd
}
