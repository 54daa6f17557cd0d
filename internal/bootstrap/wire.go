//go:build wireinject

package bootstrap

import (
	"context"

	"stakeledger/internal/application"
	"stakeledger/internal/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var infraSet = wire.NewSet(
	ProvideHTTPClient,
	ProvideLedgerStore,
	ProvideSource,
	ProvideOracle,
	ProvideQuoteCache,
)

// InitReconciler builds a Reconciler for one sync run plus its cleanup.
func InitReconciler(ctx context.Context, cfg config.Config, log *zap.Logger, opts RunOptions) (*application.Reconciler, func(), error) {
	wire.Build(
		infraSet,
		ProvideReconciler,
	)
	return nil, nil, nil
}

// InitLedgerStore builds only the configured ledger backend.
func InitLedgerStore(ctx context.Context, cfg config.Config, log *zap.Logger) (application.LedgerStore, func(), error) {
	wire.Build(ProvideLedgerStore)
	return nil, nil, nil
}
