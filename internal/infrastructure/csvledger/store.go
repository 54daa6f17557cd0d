package csvledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Header is the on-disk column contract; external tools read these names.
var Header = []string{"transaction_id", "date", "asset_amount", "unit_price", "value"}

type Store struct {
	Path string
	Log  *zap.Logger

	wrap func(io.Writer) io.Writer // test hook for injecting write faults
}

var _ application.LedgerStore = (*Store)(nil)

func New(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{Path: path, Log: log}
}

func (s *Store) Load(_ context.Context) (*domain.Ledger, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log().Info("ledger.absent", zap.String("path", s.Path))
		return domain.NewLedger(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("csvledger: %w: %w", domain.ErrLedgerUnreadable, err)
	}
	defer f.Close()

	records, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("csvledger: %s: %w", s.Path, err)
	}
	l, err := domain.NewLedger(records)
	if err != nil {
		return nil, fmt.Errorf("csvledger: %s: %w: %w", s.Path, domain.ErrLedgerCorrupt, err)
	}
	return l, nil
}

func decode(r io.Reader) ([]domain.LedgerRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.ReuseRecord = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", readKind(err), err)
	}
	if !slices.Equal(head, Header) {
		return nil, fmt.Errorf("%w: unexpected header %q", domain.ErrLedgerCorrupt, head)
	}

	var out []domain.LedgerRecord
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", readKind(err), row, err)
		}
		rec, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", domain.ErrLedgerCorrupt, row, err)
		}
		out = append(out, rec)
	}
}

// readKind tells malformed CSV apart from a file that cannot be read at all.
func readKind(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return domain.ErrLedgerCorrupt
	}
	return domain.ErrLedgerUnreadable
}

func parseRow(fields []string) (domain.LedgerRecord, error) {
	if fields[0] == "" {
		return domain.LedgerRecord{}, errors.New("empty transaction_id")
	}
	rec := domain.LedgerRecord{TransactionID: fields[0], Date: fields[1]}
	if _, err := rec.Time(); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("date: %w", err)
	}
	var err error
	if rec.AssetAmount, err = decimal.NewFromString(fields[2]); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("asset_amount: %w", err)
	}
	if rec.UnitPrice, err = decimal.NewFromString(fields[3]); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("unit_price: %w", err)
	}
	if rec.Value, err = decimal.NewFromString(fields[4]); err != nil {
		return domain.LedgerRecord{}, fmt.Errorf("value: %w", err)
	}
	return rec, nil
}

// Save writes the ledger to a temp file next to Path and renames it into
// place, so readers only ever see the old or the new content. An existing
// file keeps its permissions; a new one is created 0644.
func (s *Store) Save(_ context.Context, l *domain.Ledger) (err error) {
	dir := filepath.Dir(s.Path)
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(s.Path); statErr == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csvledger: %w: create temp: %w", domain.ErrLedgerWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	if s.wrap != nil {
		w = s.wrap(w)
	}
	if err := encode(w, l); err != nil {
		return fmt.Errorf("csvledger: %w: %w", domain.ErrLedgerWrite, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("csvledger: %w: sync: %w", domain.ErrLedgerWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csvledger: %w: close: %w", domain.ErrLedgerWrite, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("csvledger: %w: chmod: %w", domain.ErrLedgerWrite, err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("csvledger: %w: rename: %w", domain.ErrLedgerWrite, err)
	}
	syncDir(dir)
	s.log().Info("ledger.written", zap.String("path", s.Path), zap.Int("records", l.Len()))
	return nil
}

func encode(w io.Writer, l *domain.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range l.Records() {
		if err := cw.Write([]string{
			r.TransactionID,
			r.Date,
			r.AssetAmount.String(),
			r.UnitPrice.String(),
			r.Value.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// syncDir persists the rename on filesystems that need it. Best effort.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

func (s *Store) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
