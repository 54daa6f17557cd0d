package domain

import "errors"

var (
	ErrLedgerCorrupt         = errors.New("ledger corrupt")
	ErrLedgerUnreadable      = errors.New("ledger unreadable")
	ErrLedgerWrite           = errors.New("ledger write failed")
	ErrSourceUnavailable     = errors.New("transaction source unavailable")
	ErrSourceResponseInvalid = errors.New("transaction source response invalid")
	ErrOracleUnavailable     = errors.New("price oracle unavailable")
	ErrOracleResponseInvalid = errors.New("price oracle response invalid")
	ErrDuplicateTransaction  = errors.New("duplicate transaction id")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrLedgerCorrupt, "ledger_corrupt"},
	{ErrLedgerUnreadable, "ledger_unreadable"},
	{ErrLedgerWrite, "ledger_write"},
	{ErrSourceUnavailable, "source_unavailable"},
	{ErrSourceResponseInvalid, "source_response_invalid"},
	{ErrOracleUnavailable, "oracle_unavailable"},
	{ErrOracleResponseInvalid, "oracle_response_invalid"},
}

// ErrorKind names the failure class of err for logs, or "unknown".
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
