package domain

import "github.com/shopspring/decimal"

// PriceQuote is the fiat price of one asset unit on a calendar day.
type PriceQuote struct {
	Date  Date
	Price decimal.Decimal
}
