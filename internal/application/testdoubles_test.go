package application

import (
	"context"
	"errors"
	"time"

	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrStore = errors.New("store error")
)

type fakeLedgerStore struct {
	persisted []domain.LedgerRecord
	loadErr   error
	saveErr   error
	loads     int
	saves     int
}

func (f *fakeLedgerStore) Load(context.Context) (*domain.Ledger, error) {
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return domain.NewLedger(f.persisted)
}

func (f *fakeLedgerStore) Save(_ context.Context, l *domain.Ledger) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.persisted = l.Records()
	return nil
}

func (f *fakeLedgerStore) ids() []string {
	out := make([]string, 0, len(f.persisted))
	for _, r := range f.persisted {
		out = append(out, r.TransactionID)
	}
	return out
}

type fakeSource struct {
	txs   []domain.RawTransaction
	err   error
	calls int
}

func (f *fakeSource) Fetch(context.Context, string) ([]domain.RawTransaction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.txs, nil
}

type fakeOracle struct {
	prices map[string]string // YYYY-MM-DD -> price
	failAt int               // 1-based call number that fails, 0 = never
	err    error
	days   []string
}

func (f *fakeOracle) Quote(_ context.Context, d domain.Date) (domain.PriceQuote, error) {
	f.days = append(f.days, d.String())
	if f.failAt > 0 && len(f.days) == f.failAt {
		return domain.PriceQuote{}, f.err
	}
	p, ok := f.prices[d.String()]
	if !ok {
		p = "1"
	}
	return domain.PriceQuote{Date: d, Price: decimal.RequireFromString(p)}, nil
}

type countingPacer struct{ waits int }

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

type fakeQuoteCache struct {
	store  map[domain.Date]decimal.Decimal
	getErr error
	sets   int
}

func (f *fakeQuoteCache) Get(_ context.Context, d domain.Date) (decimal.Decimal, bool, error) {
	if f.getErr != nil {
		return decimal.Decimal{}, false, f.getErr
	}
	p, ok := f.store[d]
	return p, ok, nil
}

func (f *fakeQuoteCache) Set(_ context.Context, d domain.Date, p decimal.Decimal) error {
	if f.store == nil {
		f.store = map[domain.Date]decimal.Decimal{}
	}
	f.store[d] = p
	f.sets++
	return nil
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

type fixedIDGen string

func (g fixedIDGen) NewID() string { return string(g) }

func rawTx(id string, ts string, amount string) domain.RawTransaction {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return domain.RawTransaction{ID: id, Timestamp: t.UTC(), Amount: decimal.RequireFromString(amount)}
}

func record(id string) domain.LedgerRecord {
	return domain.LedgerRecord{
		TransactionID: id,
		Date:          "2023-01-01 00:00:00",
		AssetAmount:   decimal.NewFromInt(1),
		UnitPrice:     decimal.NewFromInt(1),
		Value:         decimal.NewFromInt(1),
	}
}
