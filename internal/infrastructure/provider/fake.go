package provider

import (
	"context"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
)

// Ensure Fake implements application.PriceOracle.
var _ application.PriceOracle = (*Fake)(nil)

type Fake struct {
	price decimal.Decimal
}

func NewFake(price decimal.Decimal) *Fake { return &Fake{price: price} }

func (f *Fake) Quote(_ context.Context, day domain.Date) (domain.PriceQuote, error) {
	return domain.PriceQuote{Date: day, Price: f.price}, nil
}
