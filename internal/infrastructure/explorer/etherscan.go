package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"
	"stakeledger/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const (
	endBlock        = "99999999"
	DefaultPageSize = 10000

	statusOK      = "1"
	statusNotOK   = "0"
	msgNoTxsFound = "No transactions found"
)

type EtherscanSource struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Client   *http.Client
}

var _ application.TransactionSource = (*EtherscanSource)(nil)

type txListResp struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type txItem struct {
	Hash        string         `json:"hash"`
	BlockNumber *httpx.Decimal `json:"blockNumber"`
	TimeStamp   *httpx.Decimal `json:"timeStamp"`
	Value       *httpx.Decimal `json:"value"`
}

// Fetch returns every transaction of address in ascending block order. A full
// page means more may follow, so the next request restarts at the last block
// seen; that block is requested again and its repeats are dropped by hash.
func (s *EtherscanSource) Fetch(ctx context.Context, address string) ([]domain.RawTransaction, error) {
	if s.BaseURL == "" {
		return nil, errors.New("etherscan: missing configuration")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("etherscan: invalid base url: %w", err)
	}
	pageSize := s.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		out   []domain.RawTransaction
		seen  = make(map[string]struct{})
		start int64
	)
	for {
		items, err := s.page(ctx, *u, address, start, pageSize)
		if err != nil {
			return nil, err
		}
		txs, last, err := normalize(items)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if _, dup := seen[tx.ID]; dup {
				continue
			}
			seen[tx.ID] = struct{}{}
			out = append(out, tx)
		}
		if len(items) < pageSize {
			return out, nil
		}
		if last < 0 || last <= start {
			// no block number to resume from, or one block fills the page
			return nil, fmt.Errorf("etherscan: %w: result may be truncated at %d transactions from block %d",
				domain.ErrSourceResponseInvalid, pageSize, start)
		}
		start = last
	}
}

func (s *EtherscanSource) page(ctx context.Context, u url.URL, address string, startBlock int64, pageSize int) ([]txItem, error) {
	q := u.Query()
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", strconv.FormatInt(startBlock, 10))
	q.Set("endblock", endBlock)
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(pageSize))
	q.Set("sort", "asc")
	q.Set("apikey", s.APIKey)
	u.RawQuery = q.Encode()

	client := &httpx.Client{HTTP: s.Client}
	var body txListResp
	if err := client.GetJSON(ctx, u.String(), &body); err != nil {
		return nil, classify(err)
	}

	var items []txItem
	if err := json.Unmarshal(body.Result, &items); err != nil {
		// error responses carry a string in result, e.g. "Invalid API Key"
		return nil, fmt.Errorf("etherscan: %w: status %q message %q result %s",
			domain.ErrSourceResponseInvalid, body.Status, body.Message, truncate(body.Result))
	}
	switch body.Status {
	case statusOK:
		return items, nil
	case statusNotOK:
		if len(items) == 0 && body.Message == msgNoTxsFound {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("etherscan: %w: status %q message %q", domain.ErrSourceResponseInvalid, body.Status, body.Message)
}

// maxUnix is 9999-12-31 23:59:59 UTC, the last second the ledger date layout can render.
const maxUnix = 253402300799

var (
	maxTimestamp = decimal.NewFromInt(maxUnix)
	maxBlock     = decimal.NewFromInt(math.MaxInt64)
)

// normalize converts items and reports the highest block number seen, or -1
// when an item carries none.
func normalize(items []txItem) ([]domain.RawTransaction, int64, error) {
	out := make([]domain.RawTransaction, 0, len(items))
	var (
		last    int64
		missing bool
	)
	for i, it := range items {
		if it.Hash == "" || it.TimeStamp == nil || it.Value == nil {
			return nil, 0, fmt.Errorf("etherscan: %w: transaction %d missing hash, timeStamp or value", domain.ErrSourceResponseInvalid, i)
		}
		if !it.TimeStamp.IsInteger() || it.TimeStamp.IsNegative() || it.TimeStamp.GreaterThan(maxTimestamp) {
			return nil, 0, fmt.Errorf("etherscan: %w: transaction %s has invalid timeStamp %s", domain.ErrSourceResponseInvalid, it.Hash, it.TimeStamp)
		}
		if !it.Value.IsInteger() || it.Value.IsNegative() {
			return nil, 0, fmt.Errorf("etherscan: %w: transaction %s has invalid value %s", domain.ErrSourceResponseInvalid, it.Hash, it.Value)
		}
		switch b := it.BlockNumber; {
		case b == nil:
			missing = true
		case !b.IsInteger() || b.IsNegative() || b.GreaterThan(maxBlock):
			return nil, 0, fmt.Errorf("etherscan: %w: transaction %s has invalid blockNumber %s", domain.ErrSourceResponseInvalid, it.Hash, b)
		default:
			last = max(last, b.IntPart())
		}
		out = append(out, domain.RawTransaction{
			ID:        it.Hash,
			Timestamp: time.Unix(it.TimeStamp.IntPart(), 0).UTC(),
			Amount:    domain.AmountFromBaseUnits(it.Value.Decimal),
		})
	}
	if missing {
		return out, -1, nil
	}
	return out, last, nil
}

func classify(err error) error {
	var se *httpx.StatusError
	switch {
	case errors.Is(err, httpx.ErrTransport):
		return fmt.Errorf("etherscan: %w: %w", domain.ErrSourceUnavailable, err)
	case errors.As(err, &se):
		return fmt.Errorf("etherscan: %w: status %d", domain.ErrSourceResponseInvalid, se.Code)
	default:
		return fmt.Errorf("etherscan: %w: %w", domain.ErrSourceResponseInvalid, err)
	}
}

func truncate(b []byte) string {
	const max = 120
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
