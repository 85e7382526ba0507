package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hexlake/cir/pkg/backfill"
	"github.com/hexlake/cir/pkg/redis"
	"github.com/hexlake/cir/pkg/resolver"
	"github.com/hexlake/cir/pkg/source"
	"github.com/hexlake/cir/pkg/tempid"
)

//nolint:gochecknoglobals // cobra flags
var (
	resolveInput    string
	resolveOutput   string
	resolveSheet    string
	enqueueBackfill bool
)

//nolint:gochecknoglobals // Cobra commands are typically global
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve company identities for a spreadsheet",
	Long: `Resolve reads a spreadsheet, assigns a canonical company id to every
row, and optionally writes the result back out with the id column appended.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runResolve(cmd.Context())
	},
}

//nolint:gochecknoinits // Cobra command registration
func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveInput, "input", "i", "", "input spreadsheet (xlsx)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "output spreadsheet; omit to resolve without writing")
	resolveCmd.Flags().StringVar(&resolveSheet, "sheet", "", "sheet name; defaults to the first sheet")
	resolveCmd.Flags().BoolVar(&enqueueBackfill, "enqueue-backfill", false, "enqueue unresolved names for asynchronous lookup")

	if err := resolveCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
}

func runResolve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.WithField("command", "resolve")

	comps, err := buildComponents(log, cfg)
	if err != nil {
		return err
	}
	defer comps.close(log)

	table, err := source.Read(resolveInput, resolveSheet)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	log.WithFields(logrus.Fields{
		"sheet": table.Sheet,
		"rows":  len(table.Rows),
	}).Info("Loaded input spreadsheet")

	ids, stats, err := comps.resolver.ResolveBatch(ctx, table.Rows, cfg.Strategy)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	if resolveOutput != "" {
		if err := table.WriteWithColumn(resolveOutput, cfg.Strategy.OutputColumn, ids); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}

		log.WithField("path", resolveOutput).Info("Wrote resolved spreadsheet")
	}

	if enqueueBackfill {
		if err := enqueueUnresolved(ctx, log, cfg, comps, table.Rows, ids); err != nil {
			log.WithError(err).Warn("Failed to enqueue backfill lookups")
		}
	}

	if stats.Unresolved > 0 {
		log.WithField("unresolved", stats.Unresolved).Warn("Some rows remain unresolved")
	}

	return nil
}

// enqueueUnresolved pushes the customer names of rows that only got a
// temporary id (or nothing at all) onto the backfill queue, reusing the
// redis connection the components already hold.
func enqueueUnresolved(ctx context.Context, log logrus.FieldLogger, cfg *Config, comps *components, rows []resolver.Row, ids []string) error {
	if comps.redisClient == nil {
		return ErrRedisRequired
	}

	qm, err := backfill.NewQueueManager(log, redis.NewAsynqRedisOptions(comps.redisOpt), comps.redisClient, &cfg.Backfill)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := qm.Close(); cerr != nil {
			log.WithError(cerr).Warn("Failed to close queue manager")
		}
	}()

	names := unresolvedNames(rows, ids, cfg.Strategy.CustomerNameColumn)
	if len(names) == 0 {
		return nil
	}

	if err := qm.Enqueue(ctx, names); err != nil {
		return err
	}

	log.WithField("enqueued", len(names)).Info("Enqueued backfill lookups")

	return nil
}

// unresolvedNames collects the customer name of every row whose id is
// still empty or a placeholder.
func unresolvedNames(rows []resolver.Row, ids []string, column string) []string {
	names := make([]string, 0)

	for i, id := range ids {
		if id != "" && !tempid.IsTempID(id) {
			continue
		}

		if name := rows[i].Value(column); name != "" {
			names = append(names, name)
		}
	}

	return names
}
