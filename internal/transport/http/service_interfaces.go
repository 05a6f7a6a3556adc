package http

import (
	"context"

	"quantdesk/internal/services"
)

// HRPServiceInterface defines the clustering operations the HRP handler
// delegates to.
type HRPServiceInterface interface {
	Correlation(ctx context.Context, tickers []string, lookbackDays int) (*services.CorrelationResult, error)
	Analyze(ctx context.Context, tickers []string, lookbackDays int, linkage string) (*services.HRPResult, error)
}

// StatArbServiceInterface defines the cointegration operations the statarb
// handler delegates to.
type StatArbServiceInterface interface {
	TestPair(ctx context.Context, tickerA, tickerB string, lookbackDays int, threshold float64) (*services.PairTestResult, error)
	FindPairs(ctx context.Context, tickers []string, lookbackDays int, threshold float64) (*services.PairScanResult, error)
	Spread(ctx context.Context, params services.SpreadParams) (*services.SpreadResult, error)
}

// OptionsServiceInterface defines the surface operation the options handler
// delegates to.
type OptionsServiceInterface interface {
	Surface(ctx context.Context, ticker, expiration string, minVolume int64) (*services.SurfaceResult, error)
}
