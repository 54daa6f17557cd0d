package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"
	"stakeledger/internal/infrastructure/httpx"

	"github.com/PaesslerAG/jsonpath"
)

const (
	DefaultCoinID = "ethereum"
	demoKeyHeader = "x-cg-demo-api-key"
)

// CoinGeckoOracle reads the daily historical price of one coin in one fiat currency.
type CoinGeckoOracle struct {
	BaseURL string
	APIKey  string
	CoinID  string
	Fiat    string
	Client  *http.Client
}

var _ application.PriceOracle = (*CoinGeckoOracle)(nil)

func (o *CoinGeckoOracle) Quote(ctx context.Context, day domain.Date) (domain.PriceQuote, error) {
	if o.BaseURL == "" || o.Fiat == "" {
		return domain.PriceQuote{}, errors.New("coingecko: missing configuration")
	}
	coin := o.CoinID
	if coin == "" {
		coin = DefaultCoinID
	}
	u, err := url.Parse(o.BaseURL)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	u.Path = path.Join(u.Path, "coins", coin, "history")
	q := u.Query()
	q.Set("date", day.DMY())
	q.Set("localization", "false")
	u.RawQuery = q.Encode()

	client := &httpx.Client{HTTP: o.Client}
	if o.APIKey != "" {
		client.Header = http.Header{demoKeyHeader: []string{o.APIKey}}
	}
	var body any
	if err := client.GetJSON(ctx, u.String(), &body); err != nil {
		return domain.PriceQuote{}, classify(err, day)
	}

	fiat := strings.ToLower(o.Fiat)
	p := "$.market_data.current_price." + fiat
	jval, err := jsonpath.Get(p, body)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coingecko: %w: %s on %s: %v", domain.ErrOracleResponseInvalid, p, day, err)
	}
	// jsonpath may wrap a single answer in a list
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	price, err := httpx.DecimalFrom(jval)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coingecko: %w: %s on %s: %v", domain.ErrOracleResponseInvalid, p, day, err)
	}
	if !price.IsPositive() {
		return domain.PriceQuote{}, fmt.Errorf("coingecko: %w: non-positive %s price %s on %s", domain.ErrOracleResponseInvalid, fiat, price, day)
	}
	return domain.PriceQuote{Date: day, Price: price}, nil
}

func classify(err error, day domain.Date) error {
	var se *httpx.StatusError
	switch {
	case errors.Is(err, httpx.ErrTransport):
		return fmt.Errorf("coingecko: %w: %s: %w", domain.ErrOracleUnavailable, day, err)
	case errors.As(err, &se):
		return fmt.Errorf("coingecko: %w: %s: status %d", domain.ErrOracleResponseInvalid, day, se.Code)
	default:
		return fmt.Errorf("coingecko: %w: %s: %w", domain.ErrOracleResponseInvalid, day, err)
	}
}
