package cli

import (
	"fmt"
	"io"

	"stakeledger/internal/config"
	"stakeledger/internal/infrastructure/logx"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags "-X stakeledger/internal/cli.Version=...".
var Version = "dev"

type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	log *zap.Logger
	out io.Writer
}

// NewRootCmd builds the stakeledger command tree writing human output to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:   "stakeledger",
		Short: "Reconcile staking rewards into a fiat-valued ledger",
		Long: `stakeledger fetches the reward transactions of one account from a block
explorer, prices each one at the historical fiat quote of its day and appends
the new ones to a ledger file or table. Runs are idempotent.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	root.AddCommand(newSyncCmd(a), newSummaryCmd(a), newVersionCmd(a))
	return root
}

// setup loads configuration and the logger. Commands call it first.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := logx.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log.With(zap.String("env", cfg.Env))
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}
