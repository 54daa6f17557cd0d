package provider_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"stakeledger/internal/domain"
	"stakeledger/internal/infrastructure/provider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func httpClient(resBody string, code int, seen **http.Request) *http.Client {
	return &http.Client{
		Timeout: 2 * time.Second,
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if seen != nil {
				*seen = r
			}
			return &http.Response{
				StatusCode: code,
				Body:       io.NopCloser(strings.NewReader(resBody)),
				Header:     make(http.Header),
				Request:    r,
			}, nil
		}),
	}
}

var day = domain.Date{Year: 2023, Month: time.April, Day: 2}

func oracle(client *http.Client) *provider.CoinGeckoOracle {
	return &provider.CoinGeckoOracle{
		BaseURL: "https://api.coingecko.com/api/v3",
		Fiat:    "EUR",
		Client:  client,
	}
}

func TestQuote_NumberPrice(t *testing.T) {
	body := `{"id":"ethereum","symbol":"eth","market_data":{"current_price":{"eur":1500.25,"usd":1630.1}}}`
	var req *http.Request
	q, err := oracle(httpClient(body, 200, &req)).Quote(context.Background(), day)
	require.NoError(t, err)
	require.True(t, q.Price.Equal(decimal.RequireFromString("1500.25")), q.Price.String())
	require.Equal(t, day, q.Date)

	require.Equal(t, "/api/v3/coins/ethereum/history", req.URL.Path)
	require.Equal(t, "02-04-2023", req.URL.Query().Get("date"))
	require.Equal(t, "false", req.URL.Query().Get("localization"))
	require.Empty(t, req.Header.Get("x-cg-demo-api-key"))
}

func TestQuote_StringPrice(t *testing.T) {
	body := `{"market_data":{"current_price":{"eur":"1500.25"}}}`
	q, err := oracle(httpClient(body, 200, nil)).Quote(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, "1500.25", q.Price.String())
}

func TestQuote_CoinAndKey(t *testing.T) {
	body := `{"market_data":{"current_price":{"usd":2}}}`
	var req *http.Request
	o := oracle(httpClient(body, 200, &req))
	o.CoinID = "rocket-pool-eth"
	o.Fiat = "usd"
	o.APIKey = "demo"
	_, err := o.Quote(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, "/api/v3/coins/rocket-pool-eth/history", req.URL.Path)
	require.Equal(t, "demo", req.Header.Get("x-cg-demo-api-key"))
}

func TestQuote_Invalid(t *testing.T) {
	cases := map[string]struct {
		body string
		code int
	}{
		"missing market data": {`{"id":"ethereum"}`, 200},
		"missing fiat":        {`{"market_data":{"current_price":{"usd":1}}}`, 200},
		"wrong type":          {`{"market_data":{"current_price":{"eur":true}}}`, 200},
		"zero":                {`{"market_data":{"current_price":{"eur":0}}}`, 200},
		"rate limited":        {`{"status":{"error_code":429}}`, 429},
		"not json":            {`<html></html>`, 200},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := oracle(httpClient(c.body, c.code, nil)).Quote(context.Background(), day)
			require.ErrorIs(t, err, domain.ErrOracleResponseInvalid)
		})
	}
}

func TestQuote_Unavailable(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("i/o timeout")
	})}
	_, err := oracle(client).Quote(context.Background(), day)
	require.ErrorIs(t, err, domain.ErrOracleUnavailable)
	require.Contains(t, err.Error(), "2023-04-02")
}

func TestFake(t *testing.T) {
	q, err := provider.NewFake(decimal.NewFromInt(1234)).Quote(context.Background(), day)
	require.NoError(t, err)
	require.Equal(t, "1234", q.Price.String())
	require.Equal(t, day, q.Date)
}
