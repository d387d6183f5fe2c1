package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/auth"
	"github.com/joelkehle/metria/internal/config"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/store"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "metria",
		Short: "Business viability metrics for innovation projects",
		Long: `metria scores innovation projects on cost, value, ROI, payback, confidence
and risk, and keeps the resulting reports per user.

Examples:
  metria serve --config metria.yaml
  metria compute --file project.yaml
  metria compute --file project.json --analyze`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml or json)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newComputeCmd(opts))
	root.AddCommand(newSeedCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	return cfg, logger, nil
}

// openStore opens the configured database and seeds it when enabled.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, *store.Repos, error) {
	s, err := store.Open(ctx, cfg.Database.DSN, logger)
	if err != nil {
		return nil, nil, err
	}
	repos := store.NewRepos(s)
	if cfg.Database.Seed {
		if err := store.Seed(ctx, repos, auth.HashPassword, logger); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
	}
	return s, repos, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "metria %s\n", version)
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the initial users and companies into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			cfg.Database.Seed = true
			s, _, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return s.Close()
		},
	}
}
