package config

import "time"

const (
	DefaultExplorerURL    = "https://api.etherscan.io/api"
	DefaultOracleURL      = "https://api.coingecko.com/api/v3"
	DefaultLedgerPath     = "rewards.csv"
	DefaultRequestTimeout = 10 * time.Second
	DefaultQuoteTTL       = 30 * 24 * time.Hour
	DefaultPGMaxConns     = 5
	DefaultPGMinConns     = 1
)
