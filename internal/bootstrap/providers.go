package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"stakeledger/internal/application"
	"stakeledger/internal/config"
	"stakeledger/internal/infrastructure/csvledger"
	"stakeledger/internal/infrastructure/explorer"
	"stakeledger/internal/infrastructure/pg"
	"stakeledger/internal/infrastructure/provider"
	redisstore "stakeledger/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for LEDGER_BACKEND=pg")

// RunOptions carries per-invocation overrides from the command line.
type RunOptions struct {
	DryRun bool
	Oracle string
}

func ProvideHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.RequestTimeout}
}

func ProvideLedgerStore(ctx context.Context, cfg config.Config, log *zap.Logger) (application.LedgerStore, func(), error) {
	switch cfg.LedgerBackend {
	case "", "csv":
		return csvledger.New(cfg.LedgerPath, log), func() {}, nil
	case "pg":
		if cfg.DatabaseURL == "" {
			return nil, func() {}, ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("connect pg: %w", err)
		}
		if err := pg.RunMigrations(ctx, db, log); err != nil {
			db.Close()
			return nil, func() {}, err
		}
		cleanup := func() {
			log.Info("closing pg")
			db.Close()
		}
		return pg.NewLedgerRepo(db, log), cleanup, nil
	default:
		return nil, func() {}, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func ProvideSource(cfg config.Config, client *http.Client) application.TransactionSource {
	return &explorer.EtherscanSource{
		BaseURL:  cfg.ExplorerURL,
		APIKey:   cfg.ExplorerAPIKey,
		PageSize: cfg.ExplorerPageSize,
		Client:   client,
	}
}

func ProvideOracle(cfg config.Config, client *http.Client, opts RunOptions) (application.PriceOracle, error) {
	kind := cfg.Oracle
	if opts.Oracle != "" {
		kind = opts.Oracle
	}
	switch kind {
	case "coingecko":
		return &provider.CoinGeckoOracle{
			BaseURL: cfg.OracleURL,
			APIKey:  cfg.OracleAPIKey,
			CoinID:  cfg.CoinID,
			Fiat:    cfg.Fiat,
			Client:  client,
		}, nil
	case "fake":
		price, err := decimal.NewFromString(cfg.FakePrice)
		if err != nil {
			return nil, fmt.Errorf("FAKE_PRICE %q: %w", cfg.FakePrice, err)
		}
		return provider.NewFake(price), nil
	default:
		return nil, fmt.Errorf("unknown oracle %q", kind)
	}
}

// ProvideQuoteCache connects to Redis when the cache is enabled. An
// unreachable server is logged and left in place; cache errors never fail a run.
func ProvideQuoteCache(ctx context.Context, cfg config.Config, log *zap.Logger) (application.QuoteCache, func(), error) {
	if cfg.QuoteCache != "redis" {
		return application.NoopQuoteCache{}, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("quote_cache.unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return redisstore.New(client, cfg.CoinID, cfg.Fiat, cfg.QuoteTTL), func() { _ = client.Close() }, nil
}

func ProvideReconciler(
	cfg config.Config,
	log *zap.Logger,
	store application.LedgerStore,
	src application.TransactionSource,
	oracle application.PriceOracle,
	cache application.QuoteCache,
	opts RunOptions,
) *application.Reconciler {
	return application.NewReconciler(cfg.Address, store, src, oracle,
		application.WithQuoteCache(cache),
		application.WithPacer(application.FixedPacer{Interval: cfg.Pacing}),
		application.WithLogger(log),
		application.WithDryRun(opts.DryRun),
	)
}
