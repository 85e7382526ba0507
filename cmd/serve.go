package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hexlake/cir/pkg/api"
	"github.com/hexlake/cir/pkg/observability"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resolution HTTP API",
	Long: `Serve exposes batch identity resolution over HTTP. The service shares
the same override table, mapping cache, and enrichment budget semantics
as the resolve command.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

//nolint:gochecknoinits // Cobra command registration
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.WithField("command", "serve")

	comps, err := buildComponents(log, cfg)
	if err != nil {
		return err
	}
	defer comps.close(log)

	observability.StartMetricsServer(cfg.MetricsAddr)

	apiService, err := api.NewService(&cfg.API, comps.resolver, cfg.Strategy, log)
	if err != nil {
		return fmt.Errorf("failed to create API service: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiService.Start(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()

		return apiService.Stop()
	})

	log.WithField("addr", cfg.API.ListenAddr).Info("Resolution API started")

	if err := g.Wait(); err != nil {
		return fmt.Errorf("service error: %w", err)
	}

	log.Info("Shutdown complete")

	return nil
}
