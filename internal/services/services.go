package services

import (
	"context"
	"strings"
	"time"

	"quantdesk/internal/marketdata"
)

// MarketData is the slice of the market-data client the analysis services
// consume. *marketdata.Client satisfies it; tests substitute a stub.
type MarketData interface {
	FetchHistory(ctx context.Context, tickers []string, start, end time.Time) (*marketdata.PriceTable, []string, error)
	FetchOptionChain(ctx context.Context, ticker string) (*marketdata.ChainSnapshot, error)
}

// DataMeta describes the aligned history behind an analysis response:
// which tickers made it into the table, which failed to fetch, and the
// date coverage the engines actually saw.
type DataMeta struct {
	Tickers      []string `json:"tickers"`
	Missing      []string `json:"missing_tickers,omitempty"`
	StartDate    string   `json:"start_date,omitempty"`
	EndDate      string   `json:"end_date,omitempty"`
	Observations int      `json:"observations"`
	LookbackDays int      `json:"lookback_days"`
}

// lookbackRange converts a lookback in calendar days into a UTC fetch
// window ending now.
func lookbackRange(lookbackDays int) (start, end time.Time) {
	end = time.Now().UTC()
	start = end.AddDate(0, 0, -lookbackDays)
	return start, end
}

// tableMeta summarizes an aligned price table for response metadata.
func tableMeta(table *marketdata.PriceTable, missing []string, lookbackDays int) DataMeta {
	meta := DataMeta{
		Tickers:      table.Tickers,
		Missing:      missing,
		Observations: len(table.Dates),
		LookbackDays: lookbackDays,
	}
	if len(table.Dates) > 0 {
		meta.StartDate = table.Dates[0]
		meta.EndDate = table.Dates[len(table.Dates)-1]
	}
	return meta
}

// normalizeTickers uppercases, trims and deduplicates a ticker list while
// preserving request order. Handlers validate shape before this runs; the
// dedup here keeps a pair scan from testing a ticker against itself.
func normalizeTickers(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	normalized := make([]string, 0, len(tickers))
	for _, t := range tickers {
		ticker := normalizeTicker(t)
		if ticker == "" {
			continue
		}
		if _, dup := seen[ticker]; dup {
			continue
		}
		seen[ticker] = struct{}{}
		normalized = append(normalized, ticker)
	}
	return normalized
}

func normalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
