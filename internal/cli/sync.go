package cli

import (
	"fmt"

	"stakeledger/internal/bootstrap"
	"stakeledger/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSyncCmd(a *app) *cobra.Command {
	var opts bootstrap.RunOptions
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Append newly observed reward transactions to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close()
			if opts.Oracle != "" {
				a.cfg.Oracle = opts.Oracle
			}
			if err := a.cfg.Validate(); err != nil {
				a.log.Error("config.invalid", zap.Error(err))
				return fmt.Errorf("invalid config: %w", err)
			}

			ctx := cmd.Context()
			rec, cleanup, err := bootstrap.InitReconciler(ctx, a.cfg, a.log, opts)
			if err != nil {
				a.log.Error("sync.init_failed", zap.String("kind", domain.ErrorKind(err)), zap.Error(err))
				return err
			}
			defer cleanup()

			res, err := rec.Run(ctx)
			if err != nil {
				a.log.Error("reconcile.failed",
					zap.String("run_id", res.RunID),
					zap.String("kind", domain.ErrorKind(err)),
					zap.Error(err),
				)
				return err
			}
			a.log.Info("reconcile.done",
				zap.String("run_id", res.RunID),
				zap.Int("fetched", res.Fetched),
				zap.Int("skipped", res.Skipped),
				zap.Int("appended", res.Appended),
				zap.Int("oracle_calls", res.OracleCalls),
				zap.Int("cache_hits", res.CacheHits),
				zap.Bool("saved", res.Saved),
				zap.Duration("duration", res.Duration),
			)
			verb := "appended"
			if opts.DryRun {
				verb = "would append"
			}
			fmt.Fprintf(a.out, "fetched %d, skipped %d, %s %d\n", res.Fetched, res.Skipped, verb, res.Appended)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "compute new records without saving them")
	cmd.Flags().StringVar(&opts.Oracle, "oracle", "", "price oracle override (coingecko|fake)")
	return cmd
}
