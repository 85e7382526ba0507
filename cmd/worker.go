package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hexlake/cir/pkg/backfill"
	"github.com/hexlake/cir/pkg/observability"
)

//nolint:gochecknoglobals // Cobra commands are typically global
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the asynchronous backfill worker",
	Long: `Worker consumes queued enrichment lookups, persists the mappings it
finds, and periodically re-enqueues names that are still pending.
Requires both Redis and an enrichment endpoint to be configured.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runWorker(cmd.Context())
	},
}

//nolint:gochecknoinits // Cobra command registration
func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Redis == nil {
		return ErrRedisRequired
	}

	if cfg.Enrichment == nil {
		return ErrEnrichmentRequired
	}

	log := logger.WithField("command", "worker")

	comps, err := buildComponents(log, cfg)
	if err != nil {
		return err
	}
	defer comps.close(log)

	observability.StartMetricsServer(cfg.MetricsAddr)

	svc, err := backfill.NewService(log, &cfg.Backfill, comps.provider, comps.store, comps.redisClient, comps.redisOpt)
	if err != nil {
		return fmt.Errorf("failed to create backfill service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start backfill service: %w", err)
	}

	log.Info("Backfill worker started")

	<-ctx.Done()

	log.Info("Shutting down")

	if err := svc.Stop(); err != nil {
		return fmt.Errorf("failed to stop backfill service: %w", err)
	}

	return nil
}
