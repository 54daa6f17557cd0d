package cli

import (
	"fmt"

	"stakeledger/internal/bootstrap"
	"stakeledger/internal/domain"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals of the current ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close()
			cur := money.GetCurrency(a.cfg.Fiat)
			if cur == nil {
				return fmt.Errorf("unknown fiat currency %q", a.cfg.Fiat)
			}

			ctx := cmd.Context()
			store, cleanup, err := bootstrap.InitLedgerStore(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			defer cleanup()
			l, err := store.Load(ctx)
			if err != nil {
				return fmt.Errorf("load ledger: %w", err)
			}
			writeSummary(a, cur, l)
			return nil
		},
	}
}

func writeSummary(a *app, cur *money.Currency, l *domain.Ledger) {
	records := l.Records()
	fmt.Fprintf(a.out, "records: %d\n", len(records))
	if len(records) == 0 {
		return
	}
	var amount, value decimal.Decimal
	for _, r := range records {
		amount = amount.Add(r.AssetAmount)
		value = value.Add(r.Value)
	}
	fmt.Fprintf(a.out, "first:   %s\n", records[0].Date)
	fmt.Fprintf(a.out, "last:    %s\n", records[len(records)-1].Date)
	fmt.Fprintf(a.out, "amount:  %s %s\n", amount.String(), a.cfg.CoinID)
	fmt.Fprintf(a.out, "value:   %s\n", formatFiat(cur, value))
}

// formatFiat rounds to the currency's minor unit and renders it with its symbol.
func formatFiat(cur *money.Currency, v decimal.Decimal) string {
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
