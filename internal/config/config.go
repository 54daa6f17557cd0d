package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"stakeledger/internal/application"
	"stakeledger/internal/domain"
	infraconfig "stakeledger/internal/infrastructure/config"
	"stakeledger/internal/infrastructure/explorer"
	"stakeledger/internal/infrastructure/provider"

	"github.com/Rhymond/go-money"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Common
	Env            string        `yaml:"env"`
	LogLevel       string        `yaml:"log_level"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Account
	Address string `yaml:"account_address"`
	Fiat    string `yaml:"fiat"`
	// Explorer
	ExplorerURL      string `yaml:"explorer_api_url"`
	ExplorerAPIKey   string `yaml:"explorer_api_key"`
	ExplorerPageSize int    `yaml:"explorer_page_size"`
	// Oracle
	Oracle       string        `yaml:"oracle"`
	OracleURL    string        `yaml:"oracle_api_url"`
	OracleAPIKey string        `yaml:"oracle_api_key"`
	CoinID       string        `yaml:"oracle_coin_id"`
	Pacing       time.Duration `yaml:"oracle_pacing"`
	FakePrice    string        `yaml:"fake_price"`
	// Ledger
	LedgerBackend string `yaml:"ledger_backend"`
	LedgerPath    string `yaml:"ledger_path"`
	DatabaseURL   string `yaml:"database_url"`
	// Redis (quote cache)
	QuoteCache    string        `yaml:"quote_cache"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	QuoteTTL      time.Duration `yaml:"quote_cache_ttl"`
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func msDef(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

// Defaults is the configuration before any file or environment is applied.
func Defaults() Config {
	return Config{
		Env:              "local",
		LogLevel:         "info",
		RequestTimeout:   infraconfig.DefaultRequestTimeout,
		Fiat:             "EUR",
		ExplorerURL:      infraconfig.DefaultExplorerURL,
		ExplorerPageSize: explorer.DefaultPageSize,
		Oracle:           "coingecko",
		OracleURL:        infraconfig.DefaultOracleURL,
		CoinID:           provider.DefaultCoinID,
		Pacing:           application.DefaultPacing,
		LedgerBackend:    "csv",
		LedgerPath:       infraconfig.DefaultLedgerPath,
		QuoteCache:       "none",
		RedisAddr:        "localhost:6379",
		QuoteTTL:         infraconfig.DefaultQuoteTTL,
	}
}

// Load applies defaults, then the YAML file at path (or CONFIG_FILE) if any,
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.Fiat = strings.ToUpper(cfg.Fiat)
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.RequestTimeout = msDef("REQUEST_TIMEOUT_MS", c.RequestTimeout)
	c.Address = getEnv("ACCOUNT_ADDRESS", c.Address)
	c.Fiat = getEnv("FIAT", c.Fiat)
	c.ExplorerURL = getEnv("EXPLORER_API_URL", c.ExplorerURL)
	c.ExplorerAPIKey = getEnv("EXPLORER_API_KEY", c.ExplorerAPIKey)
	c.ExplorerPageSize = atoiDef(getEnv("EXPLORER_PAGE_SIZE", ""), c.ExplorerPageSize)
	c.Oracle = getEnv("ORACLE", c.Oracle)
	c.OracleURL = getEnv("ORACLE_API_URL", c.OracleURL)
	c.OracleAPIKey = getEnv("ORACLE_API_KEY", c.OracleAPIKey)
	c.CoinID = getEnv("ORACLE_COIN_ID", c.CoinID)
	c.Pacing = msDef("ORACLE_PACING_MS", c.Pacing)
	c.FakePrice = getEnv("FAKE_PRICE", c.FakePrice)
	c.LedgerBackend = getEnv("LEDGER_BACKEND", c.LedgerBackend)
	c.LedgerPath = getEnv("LEDGER_PATH", c.LedgerPath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.QuoteCache = getEnv("QUOTE_CACHE", c.QuoteCache)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = atoiDef(getEnv("REDIS_DB", ""), c.RedisDB)
	c.QuoteTTL = msDef("QUOTE_CACHE_TTL_MS", c.QuoteTTL)
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	if !domain.ValidateAddress(c.Address) {
		errs = append(errs, fmt.Errorf("ACCOUNT_ADDRESS %q is not a 0x-prefixed 40 hex digit address", c.Address))
	}
	if money.GetCurrency(c.Fiat) == nil {
		errs = append(errs, fmt.Errorf("unknown fiat currency %q", c.Fiat))
	}
	if c.Pacing < 0 {
		errs = append(errs, fmt.Errorf("oracle pacing must not be negative, got %s", c.Pacing))
	}
	if c.ExplorerURL == "" {
		errs = append(errs, errors.New("EXPLORER_API_URL is required"))
	}
	if c.ExplorerPageSize <= 0 {
		errs = append(errs, fmt.Errorf("explorer page size must be positive, got %d", c.ExplorerPageSize))
	}
	switch c.Oracle {
	case "coingecko":
		if c.OracleURL == "" {
			errs = append(errs, errors.New("ORACLE_API_URL is required for the coingecko oracle"))
		}
	case "fake":
		if c.FakePrice == "" {
			errs = append(errs, errors.New("FAKE_PRICE is required for the fake oracle"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown oracle %q", c.Oracle))
	}
	switch c.LedgerBackend {
	case "csv":
		if c.LedgerPath == "" {
			errs = append(errs, errors.New("LEDGER_PATH is required for the csv backend"))
		}
	case "pg":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the pg backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ledger backend %q", c.LedgerBackend))
	}
	switch c.QuoteCache {
	case "none":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required for the redis quote cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown quote cache %q", c.QuoteCache))
	}
	return errors.Join(errs...)
}
