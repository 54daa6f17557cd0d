package pg

import (
	"context"
	"fmt"
	"time"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ application.LedgerStore = (*LedgerRepo)(nil)

// LedgerRepo keeps the ledger in the ledger_records table. Row position
// preserves ledger order; existing rows are never rewritten.
type LedgerRepo struct {
	db  *DB
	uow *UnitOfWork
	log *zap.Logger
}

func NewLedgerRepo(db *DB, log *zap.Logger) *LedgerRepo {
	if log == nil {
		log = zap.NewNop()
	}
	return &LedgerRepo{db: db, uow: &UnitOfWork{Pool: db.Pool}, log: log}
}

func (r *LedgerRepo) Load(ctx context.Context) (*domain.Ledger, error) {
	const q = `
        SELECT transaction_id, recorded_at, asset_amount::text, unit_price::text, value::text
        FROM ledger_records ORDER BY position`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("pg: %w: %w", domain.ErrLedgerUnreadable, err)
	}
	defer rows.Close()

	var records []domain.LedgerRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("pg: %w: %w", domain.ErrLedgerCorrupt, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: %w: %w", domain.ErrLedgerUnreadable, err)
	}
	l, err := domain.NewLedger(records)
	if err != nil {
		return nil, fmt.Errorf("pg: %w: %w", domain.ErrLedgerCorrupt, err)
	}
	return l, nil
}

func scanRecord(rows pgx.Rows) (domain.LedgerRecord, error) {
	var (
		id                   string
		at                   time.Time
		amount, price, value string
	)
	if err := rows.Scan(&id, &at, &amount, &price, &value); err != nil {
		return domain.LedgerRecord{}, err
	}
	rec := domain.LedgerRecord{TransactionID: id, Date: at.UTC().Format(domain.RecordDateLayout)}
	var err error
	if rec.AssetAmount, err = decimal.NewFromString(amount); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("%s asset_amount: %w", id, err)
	}
	if rec.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("%s unit_price: %w", id, err)
	}
	if rec.Value, err = decimal.NewFromString(value); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("%s value: %w", id, err)
	}
	return rec, nil
}

// Save inserts every record not yet stored, in one transaction.
func (r *LedgerRepo) Save(ctx context.Context, l *domain.Ledger) error {
	const ins = `
        INSERT INTO ledger_records(position, transaction_id, recorded_at, asset_amount, unit_price, value)
        VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6::text::numeric)
        ON CONFLICT (transaction_id) DO NOTHING`
	var inserted int64
	err := r.uow.Do(ctx, func(ctx context.Context, tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i, rec := range l.Records() {
			at, err := rec.Time()
			if err != nil {
				return fmt.Errorf("%s date: %w", rec.TransactionID, err)
			}
			batch.Queue(ins, int64(i), rec.TransactionID, at,
				rec.AssetAmount.String(), rec.UnitPrice.String(), rec.Value.String())
		}
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			tag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				return err
			}
			inserted += tag.RowsAffected()
		}
		return br.Close()
	})
	if err != nil {
		return fmt.Errorf("pg: %w: %w", domain.ErrLedgerWrite, err)
	}
	r.log.Info("ledger.written", zap.String("backend", "pg"), zap.Int64("inserted", inserted), zap.Int("records", l.Len()))
	return nil
}
