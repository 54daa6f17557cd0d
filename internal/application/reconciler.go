package application

import (
	"context"
	"fmt"
	"time"

	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reconciler merges new explorer transactions, priced at their day quote,
// into the ledger. A run either persists every new record or none.
type Reconciler struct {
	address string
	ledger  LedgerStore
	source  TransactionSource
	oracle  PriceOracle
	cache   QuoteCache
	pacer   Pacer
	log     *zap.Logger
	clock   Clock
	idgen   IDGen
	dryRun  bool
}

type Option func(*Reconciler)

func WithQuoteCache(c QuoteCache) Option { return func(r *Reconciler) { r.cache = c } }
func WithPacer(p Pacer) Option           { return func(r *Reconciler) { r.pacer = p } }
func WithLogger(l *zap.Logger) Option    { return func(r *Reconciler) { r.log = l } }
func WithClock(c Clock) Option           { return func(r *Reconciler) { r.clock = c } }
func WithIDGen(g IDGen) Option           { return func(r *Reconciler) { r.idgen = g } }

// WithDryRun computes the merge but never saves it.
func WithDryRun(on bool) Option { return func(r *Reconciler) { r.dryRun = on } }

func NewReconciler(address string, ledger LedgerStore, source TransactionSource, oracle PriceOracle, opts ...Option) *Reconciler {
	r := &Reconciler{
		address: address,
		ledger:  ledger,
		source:  source,
		oracle:  oracle,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = NoopQuoteCache{}
	}
	if r.pacer == nil {
		r.pacer = FixedPacer{Interval: DefaultPacing}
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.clock == nil {
		r.clock = realClock{}
	}
	if r.idgen == nil {
		r.idgen = defaultIDGen{}
	}
	return r
}

// Result summarizes one run.
type Result struct {
	RunID       string
	Fetched     int
	Skipped     int
	Appended    int
	OracleCalls int
	CacheHits   int
	Saved       bool
	Duration    time.Duration
}

func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: r.idgen.NewID()}
	start := r.clock.Now()
	log := r.log.With(zap.String("run_id", res.RunID), zap.String("address", r.address))

	ledger, err := r.ledger.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("load ledger: %w", err)
	}
	log.Info("reconcile.ledger_loaded", zap.Int("records", ledger.Len()))

	txs, err := r.source.Fetch(ctx, r.address)
	if err != nil {
		return res, fmt.Errorf("fetch transactions: %w", err)
	}
	res.Fetched = len(txs)
	if len(txs) == 0 {
		log.Info("reconcile.empty_fetch")
		return r.finish(res, start), nil
	}
	log.Info("reconcile.fetched", zap.Int("transactions", len(txs)))

	memo := make(map[domain.Date]decimal.Decimal)
	for _, tx := range txs {
		if ledger.Has(tx.ID) {
			res.Skipped++
			continue
		}
		price, err := r.price(ctx, log, tx.Day(), memo, &res)
		if err != nil {
			return res, fmt.Errorf("price transaction %s: %w", tx.ID, err)
		}
		rec := domain.NewLedgerRecord(tx, price)
		if err := ledger.Append(rec); err != nil {
			return res, fmt.Errorf("append transaction %s: %w", tx.ID, err)
		}
		res.Appended++
		log.Debug("reconcile.record_appended",
			zap.String("tx", rec.TransactionID),
			zap.String("date", rec.Date),
			zap.String("amount", rec.AssetAmount.String()),
			zap.String("price", rec.UnitPrice.String()),
			zap.String("value", rec.Value.String()),
		)
	}

	if res.Appended == 0 {
		log.Info("reconcile.up_to_date", zap.Int("skipped", res.Skipped))
		return r.finish(res, start), nil
	}
	if r.dryRun {
		log.Info("reconcile.dry_run", zap.Int("appended", res.Appended))
		return r.finish(res, start), nil
	}
	if err := r.ledger.Save(ctx, ledger); err != nil {
		return res, fmt.Errorf("save ledger: %w", err)
	}
	res.Saved = true
	log.Info("reconcile.saved", zap.Int("appended", res.Appended), zap.Int("records", ledger.Len()))
	return r.finish(res, start), nil
}

func (r *Reconciler) finish(res Result, start time.Time) Result {
	res.Duration = r.clock.Now().Sub(start)
	return res
}

// price resolves a day quote from the run memo, then the cache, then the
// oracle. Only oracle calls are paced.
func (r *Reconciler) price(ctx context.Context, log *zap.Logger, d domain.Date, memo map[domain.Date]decimal.Decimal, res *Result) (decimal.Decimal, error) {
	if p, ok := memo[d]; ok {
		res.CacheHits++
		return p, nil
	}
	p, ok, err := r.cache.Get(ctx, d)
	if err != nil {
		log.Warn("quote_cache.get_failed", zap.String("day", d.String()), zap.Error(err))
	} else if ok {
		memo[d] = p
		res.CacheHits++
		return p, nil
	}

	if res.OracleCalls > 0 {
		if err := r.pacer.Wait(ctx); err != nil {
			return decimal.Decimal{}, fmt.Errorf("pacing: %w", err)
		}
	}
	res.OracleCalls++
	q, err := r.oracle.Quote(ctx, d)
	if err != nil {
		return decimal.Decimal{}, err
	}
	memo[d] = q.Price
	if err := r.cache.Set(ctx, d, q.Price); err != nil {
		log.Warn("quote_cache.set_failed", zap.String("day", d.String()), zap.Error(err))
	}
	return q.Price, nil
}
