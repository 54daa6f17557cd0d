package application

import (
	"context"

	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
)

// NoopQuoteCache never hits; useful for tests/dev when Redis is disabled.
type NoopQuoteCache struct{}

func (NoopQuoteCache) Get(context.Context, domain.Date) (decimal.Decimal, bool, error) {
	return decimal.Decimal{}, false, nil
}

func (NoopQuoteCache) Set(context.Context, domain.Date, decimal.Decimal) error { return nil }
