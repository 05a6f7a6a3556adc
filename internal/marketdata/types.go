package marketdata

import (
	"time"

	"quantdesk/internal/options"
)

// DateLayout is the wire format for provider dates.
const DateLayout = "2006-01-02"

// DefaultRiskFreeRate stands in when the provider omits a risk-free rate.
const DefaultRiskFreeRate = 0.045

// Client defaults applied by NewClient for unset config fields.
const (
	DefaultTimeout           = 10 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 10
	DefaultFetchConcurrency  = 4
	DefaultCacheTTL          = 5 * time.Minute
)

// Config carries the provider client settings.
type Config struct {
	ProviderName      string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	FetchConcurrency  int

	// RiskFreeRate is used when the provider omits one in a chain snapshot.
	RiskFreeRate float64
}

// DailyBar is one day of provider price history.
type DailyBar struct {
	Date     string  `json:"date"`
	AdjClose float64 `json:"adj_close"`
}

// PriceTable holds aligned adjusted closes. Every ticker shares the Dates
// index; a date survives alignment only when every ticker has a finite
// close on it.
type PriceTable struct {
	Dates   []string             `json:"dates"`
	Tickers []string             `json:"tickers"`
	Closes  map[string][]float64 `json:"closes"`
}

// ReturnsTable holds simple daily returns over an aligned date index.
type ReturnsTable struct {
	Dates   []string             `json:"dates"`
	Tickers []string             `json:"tickers"`
	Returns map[string][]float64 `json:"returns"`
}

// ChainSnapshot is one options chain as fetched: raw contract rows plus the
// spot price and risk-free rate needed to solve them. Rows are uncleaned;
// pass them through CleanChain before solving.
type ChainSnapshot struct {
	Ticker       string             `json:"ticker"`
	SpotPrice    float64            `json:"spot_price"`
	RiskFreeRate float64            `json:"risk_free_rate"`
	Contracts    []options.Contract `json:"contracts"`
	AsOf         time.Time          `json:"as_of"`
}
