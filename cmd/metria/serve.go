package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joelkehle/metria/internal/admin"
	"github.com/joelkehle/metria/internal/analysis"
	"github.com/joelkehle/metria/internal/auth"
	"github.com/joelkehle/metria/internal/httpapi"
	"github.com/joelkehle/metria/internal/reports"
	"github.com/joelkehle/metria/internal/telemetry"
)

const shutdownGrace = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, version, logger)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					logger.Warn("telemetry shutdown", zap.Error(err))
				}
			}()

			s, repos, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			ai, err := analysis.NewFromConfig(ctx, cfg.AI, logger)
			if err != nil {
				logger.Warn("ai analysis disabled", zap.String("provider", cfg.AI.Provider), zap.Error(err))
				ai = analysis.NewService(nil, cfg.AI.Timeout(), logger)
			}

			h := httpapi.NewServer(httpapi.Deps{
				Auth:    auth.NewService(repos, cfg.Auth.SessionTTL(), logger),
				Reports: reports.NewService(repos, ai, logger),
				Admin:   admin.NewService(repos, logger),
				PDF:     reports.NewChromiumPDFRenderer(cfg.Reports.ChromePath),
				Logger:  logger,
				Version: version,
			})
			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           h,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("metria listening", zap.String("addr", cfg.Server.Addr), zap.String("version", version))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
