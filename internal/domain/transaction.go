package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BaseUnitExponent is the number of decimal places between the base unit and one asset unit.
const BaseUnitExponent = 18

// RawTransaction is a normalized explorer transaction.
type RawTransaction struct {
	ID        string
	Timestamp time.Time
	Amount    decimal.Decimal
}

// AmountFromBaseUnits converts an integer base-unit value into asset units.
func AmountFromBaseUnits(v decimal.Decimal) decimal.Decimal {
	return v.Shift(-BaseUnitExponent)
}

// Day returns the UTC calendar day of the transaction.
func (t RawTransaction) Day() Date {
	return DateOf(t.Timestamp)
}
