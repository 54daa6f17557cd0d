package application

import (
	"context"

	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
)

type LedgerStore interface {
	// Load returns an empty ledger when nothing has been persisted yet.
	Load(ctx context.Context) (*domain.Ledger, error)
	// Save replaces the persisted ledger as a single all-or-nothing commit.
	Save(ctx context.Context, l *domain.Ledger) error
}

type TransactionSource interface {
	Fetch(ctx context.Context, address string) ([]domain.RawTransaction, error)
}

type PriceOracle interface {
	Quote(ctx context.Context, day domain.Date) (domain.PriceQuote, error)
}

// QuoteCache stores day quotes. Historical day prices do not change, so a hit
// is as good as a fresh oracle call.
type QuoteCache interface {
	Get(ctx context.Context, day domain.Date) (decimal.Decimal, bool, error)
	Set(ctx context.Context, day domain.Date, price decimal.Decimal) error
}

// Pacer blocks between consecutive oracle calls.
type Pacer interface {
	Wait(ctx context.Context) error
}
