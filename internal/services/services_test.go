package services

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"quantdesk/internal/config"
	"quantdesk/internal/marketdata"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAnalyticsConfig() config.AnalyticsConfig {
	return config.Default().Analytics
}

// stubMarketData serves canned responses in place of the provider client.
type stubMarketData struct {
	table   *marketdata.PriceTable
	missing []string
	histErr error

	chain    *marketdata.ChainSnapshot
	chainErr error

	historyCalls int
	lastTickers  []string
	lastStart    time.Time
	lastEnd      time.Time
}

func (s *stubMarketData) FetchHistory(ctx context.Context, tickers []string, start, end time.Time) (*marketdata.PriceTable, []string, error) {
	s.historyCalls++
	s.lastTickers = tickers
	s.lastStart = start
	s.lastEnd = end
	if s.histErr != nil {
		return nil, s.missing, s.histErr
	}
	return s.table, s.missing, nil
}

func (s *stubMarketData) FetchOptionChain(ctx context.Context, ticker string) (*marketdata.ChainSnapshot, error) {
	if s.chainErr != nil {
		return nil, s.chainErr
	}
	return s.chain, nil
}

// priceTable builds an aligned table over sequential dates starting
// 2024-01-02. Tickers gives the aligned order, closes the series per
// ticker; all series must share one length.
func priceTable(tickers []string, closes map[string][]float64) *marketdata.PriceTable {
	n := 0
	for _, series := range closes {
		n = len(series)
		break
	}
	dates := make([]string, n)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i).Format(marketdata.DateLayout)
	}
	return &marketdata.PriceTable{Dates: dates, Tickers: tickers, Closes: closes}
}

// randomWalk generates a positive price path.
func randomWalk(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	series := make([]float64, n)
	level := 100.0
	for i := range series {
		level += rng.NormFloat64()
		series[i] = level
	}
	return series
}

// cointegratedWith derives a series from base as alpha + beta*base plus
// mean-reverting noise, so the pair tests as cointegrated.
func cointegratedWith(base []float64, alpha, beta float64, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	series := make([]float64, len(base))
	noise := 0.0
	for i := range base {
		noise = 0.2*noise + rng.NormFloat64()
		series[i] = alpha + beta*base[i] + noise
	}
	return series
}
