package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"stakeledger/internal/application"
	"stakeledger/internal/config"
	"stakeledger/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const addr = "0x00000000219ab540356cBB839Cbe05303d7705Fa"

const txList = `{"status":"1","message":"OK","result":[
 {"hash":"0xa","timeStamp":"1681290000","value":"2000000000000000000"},
 {"hash":"0xb","timeStamp":"1681293600","value":"500000000000000000"}
]}`

func servers(t *testing.T) (explorerURL, oracleURL string, oracleCalls *atomic.Int32) {
	t.Helper()
	ex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// handlers run off the test goroutine, so only non-fatal asserts here
		if !assert.Equal(t, addr, r.URL.Query().Get("address")) {
			http.Error(w, "unexpected address", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, txList)
	}))
	t.Cleanup(ex.Close)

	calls := &atomic.Int32{}
	or := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		okPath := assert.True(t, strings.HasSuffix(r.URL.Path, "/coins/ethereum/history"), r.URL.Path)
		okDate := assert.Equal(t, "12-04-2023", r.URL.Query().Get("date"))
		if !okPath || !okDate {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"market_data":{"current_price":{"eur":1500.25}}}`)
	}))
	t.Cleanup(or.Close)
	return ex.URL, or.URL, calls
}

func testConfig(t *testing.T, explorerURL, oracleURL string) config.Config {
	cfg := config.Defaults()
	cfg.Address = addr
	cfg.ExplorerURL = explorerURL
	cfg.OracleURL = oracleURL
	cfg.LedgerPath = filepath.Join(t.TempDir(), "rewards.csv")
	cfg.Pacing = 0
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestInitReconciler_CSVEndToEnd(t *testing.T) {
	exURL, orURL, calls := servers(t)
	cfg := testConfig(t, exURL, orURL)
	ctx := context.Background()

	rec, cleanup, err := InitReconciler(ctx, cfg, zap.NewNop(), RunOptions{})
	require.NoError(t, err)
	defer cleanup()

	res, err := rec.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.Appended)
	require.True(t, res.Saved)
	require.EqualValues(t, 1, calls.Load())

	data, err := os.ReadFile(cfg.LedgerPath)
	require.NoError(t, err)
	require.Equal(t, "transaction_id,date,asset_amount,unit_price,value\n"+
		"0xa,2023-04-12 09:00:00,2,1500.25,3000.5\n"+
		"0xb,2023-04-12 10:00:00,0.5,1500.25,750.125\n", string(data))

	res, err = rec.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.Appended)
	require.Equal(t, 2, res.Skipped)
	require.False(t, res.Saved)
}

func TestInitReconciler_RedisCacheAcrossRuns(t *testing.T) {
	mr := miniredis.RunT(t)
	exURL, orURL, calls := servers(t)
	cfg := testConfig(t, exURL, orURL)
	cfg.QuoteCache = "redis"
	cfg.RedisAddr = mr.Addr()
	ctx := context.Background()

	rec, cleanup, err := InitReconciler(ctx, cfg, zap.NewNop(), RunOptions{DryRun: true})
	require.NoError(t, err)
	defer cleanup()

	res, err := rec.Run(ctx)
	require.NoError(t, err)
	require.False(t, res.Saved)
	require.Equal(t, 1, res.OracleCalls)

	res, err = rec.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, res.OracleCalls)
	require.EqualValues(t, 1, calls.Load())
	require.True(t, mr.Exists("quote:ethereum:eur:2023-04-12"))

	_, err = os.Stat(cfg.LedgerPath)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestProvideOracle(t *testing.T) {
	cfg := config.Defaults()
	cfg.FakePrice = "42.5"
	client := ProvideHTTPClient(cfg)

	o, err := ProvideOracle(cfg, client, RunOptions{Oracle: "fake"})
	require.NoError(t, err)
	q, err := o.Quote(context.Background(), domain.Date{Year: 2023, Month: 4, Day: 12})
	require.NoError(t, err)
	require.Equal(t, "42.5", q.Price.String())

	cfg.FakePrice = "lots"
	_, err = ProvideOracle(cfg, client, RunOptions{Oracle: "fake"})
	require.Error(t, err)

	_, err = ProvideOracle(cfg, client, RunOptions{Oracle: "tea-leaves"})
	require.Error(t, err)
}

func TestProvideLedgerStore(t *testing.T) {
	cfg := config.Defaults()
	cfg.LedgerBackend = "pg"
	cfg.DatabaseURL = ""
	_, cleanup, err := ProvideLedgerStore(context.Background(), cfg, zap.NewNop())
	require.ErrorIs(t, err, ErrMissingDBURL)
	cleanup()

	cfg.LedgerBackend = "s3"
	_, _, err = ProvideLedgerStore(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
}

func TestProvideQuoteCache_Disabled(t *testing.T) {
	c, cleanup, err := ProvideQuoteCache(context.Background(), config.Defaults(), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()
	require.IsType(t, application.NoopQuoteCache{}, c)
}
