package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RecordDateLayout is how transaction timestamps are written to the ledger.
const RecordDateLayout = "2006-01-02 15:04:05"

// LedgerRecord is one enriched transaction.
type LedgerRecord struct {
	TransactionID string
	Date          string
	AssetAmount   decimal.Decimal
	UnitPrice     decimal.Decimal
	Value         decimal.Decimal
}

// NewLedgerRecord prices tx at unitPrice.
func NewLedgerRecord(tx RawTransaction, unitPrice decimal.Decimal) LedgerRecord {
	return LedgerRecord{
		TransactionID: tx.ID,
		Date:          tx.Timestamp.UTC().Format(RecordDateLayout),
		AssetAmount:   tx.Amount,
		UnitPrice:     unitPrice,
		Value:         tx.Amount.Mul(unitPrice),
	}
}

// Time parses the record date back into a UTC timestamp.
func (r LedgerRecord) Time() (time.Time, error) {
	return time.ParseInLocation(RecordDateLayout, r.Date, time.UTC)
}

// Ledger is an ordered set of records with unique transaction ids.
type Ledger struct {
	records []LedgerRecord
	known   map[string]struct{}
}

// NewLedger indexes records in order. It fails on a repeated transaction id.
func NewLedger(records []LedgerRecord) (*Ledger, error) {
	l := &Ledger{
		records: make([]LedgerRecord, 0, len(records)),
		known:   make(map[string]struct{}, len(records)),
	}
	for _, r := range records {
		if err := l.Append(r); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Ledger) Has(id string) bool {
	_, ok := l.known[id]
	return ok
}

func (l *Ledger) Append(r LedgerRecord) error {
	if l.known == nil {
		l.known = map[string]struct{}{}
	}
	if l.Has(r.TransactionID) {
		return fmt.Errorf("%w: %s", ErrDuplicateTransaction, r.TransactionID)
	}
	l.known[r.TransactionID] = struct{}{}
	l.records = append(l.records, r)
	return nil
}

func (l *Ledger) Len() int { return len(l.records) }

// Records returns a copy of the records in ledger order.
func (l *Ledger) Records() []LedgerRecord {
	out := make([]LedgerRecord, len(l.records))
	copy(out, l.records)
	return out
}
