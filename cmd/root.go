package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"realestate-bi/config"
	"realestate-bi/models"
	"realestate-bi/storage"
	"realestate-bi/utils"
)

// app carries the configuration and logger shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *utils.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	a := &app{cfg: config.Load(), logger: utils.NewLogger()}
	return a.run(os.Args[1:])
}

// run executes args and logs a fatal error before returning a non-zero code.
func (a *app) run(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		a.logger.Error("%v", err)
		a.logger.Sync()
		return 1
	}
	return 0
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	return (&app{cfg: cfg, logger: utils.NewNopLogger()}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	cfg := a.cfg
	root := &cobra.Command{
		Use:           "realestate-bi",
		Short:         "Normalize property listing exports and summarise them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.logger = utils.NewLoggerWithLevel(a.cfg.LogLevel)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.cfg.StoreDriver, "store", cfg.StoreDriver, "listing store: none, postgres or sqlite")

	root.AddCommand(newNormalizeCmd(a), newReportCmd(a), newServeCmd(a))
	return root
}

// openStore connects to the configured store, retrying the first ping.
func (a *app) openStore(ctx context.Context) (storage.ListingStore, error) {
	retry := &utils.RetryConfig{
		MaxAttempts: a.cfg.MaxRetries,
		BaseDelay:   500 * time.Millisecond,
		Logger:      a.logger,
	}
	s, err := storage.OpenSQLStore(ctx, a.cfg.StoreDriver, a.cfg.StoreDSN(), retry, a.logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// loadCanonical reads the canonical table either from the store or from the
// cleaned CSV at path.
func (a *app) loadCanonical(ctx context.Context, fromStore bool, path string) ([]*models.Listing, error) {
	if !fromStore {
		listings, err := storage.NewCanonicalCSVReader(a.logger).ReadFile(path)
		if err != nil {
			return nil, err
		}
		a.logger.Info("Loaded %d listings from %s", len(listings), path)
		return listings, nil
	}

	if a.cfg.StoreDriver == config.StoreNone {
		return nil, fmt.Errorf("--from-store needs --store postgres or sqlite")
	}
	s, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	listings, err := s.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Loaded %d listings from the %s store", len(listings), a.cfg.StoreDriver)
	return listings, nil
}
