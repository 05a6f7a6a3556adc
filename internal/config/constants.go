package config

// Application identity, reported by the version endpoint and stamped on
// structured logs.
const (
	AppName    = "QuantDesk"
	AppVersion = "1.0.0"
)

// envPrefix is the environment variable prefix for all configuration keys.
const envPrefix = "QD"

// API contract bounds. These are part of the request surface, not tunables:
// handlers reject values outside them regardless of configuration.
const (
	MinTickersCorrelation = 2
	MinTickersAnalyze     = 3
	MaxTickers            = 50

	MinLookbackDays = 30
	MaxLookbackDays = 3650

	MinSpreadWindow = 5
	MaxSpreadWindow = 252
)

// LinkageMethods are the accepted hierarchical clustering linkage names.
var LinkageMethods = []string{"single", "complete", "average", "ward"}

// ExpirationFilters are the accepted option chain expiration filters.
var ExpirationFilters = []string{"first", "near_term", "all"}
