package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"quantdesk/internal/config"
	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/statarb"
)

// PairTestResult is one cointegration test with the tickers tested and the
// history metadata behind it.
type PairTestResult struct {
	TickerA string `json:"ticker_a"`
	TickerB string `json:"ticker_b"`
	*statarb.CointegrationResult
	Meta DataMeta `json:"metadata"`
}

// PairScanResult is a universe scan with pairs sorted by ascending p-value.
type PairScanResult struct {
	*statarb.ScanResult
	Meta DataMeta `json:"metadata"`
}

// SpreadResult is a spread series for one pair under its fitted hedge
// ratio, with the per-signal date counts tallied.
type SpreadResult struct {
	TickerA string `json:"ticker_a"`
	TickerB string `json:"ticker_b"`
	*statarb.SpreadSeries
	SignalCounts map[statarb.Signal]int `json:"signal_counts"`
	Meta         DataMeta               `json:"metadata"`
}

// SpreadParams are the spread request inputs after handler validation.
// Zero values apply the configured defaults; ExitThreshold is a pointer
// because an explicit zero is a legitimate exit band.
type SpreadParams struct {
	TickerA        string
	TickerB        string
	LookbackDays   int
	Window         int
	EntryThreshold float64
	ExitThreshold  *float64
}

// StatArbService orchestrates cointegration testing: fetch aligned pair or
// universe history, run the Engle-Granger machinery, shape the response.
type StatArbService struct {
	data    MarketData
	engine  *statarb.Engine
	cfg     config.AnalyticsConfig
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewStatArbService creates the pairs service. metrics may be nil to
// disable business metrics.
func NewStatArbService(data MarketData, cfg config.AnalyticsConfig, metrics *infrastructure.Metrics, logger *slog.Logger) *StatArbService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "statarb")
	return &StatArbService{
		data:    data,
		engine:  statarb.NewEngine(logger, cfg.MaxPairWorkers),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// TestPair runs the Engle-Granger test on one pair over the lookback
// window. Non-positive lookbackDays and threshold apply the configured
// defaults.
func (s *StatArbService) TestPair(ctx context.Context, tickerA, tickerB string, lookbackDays int, threshold float64) (*PairTestResult, error) {
	started := time.Now()
	lookbackDays, threshold = s.applyDefaults(lookbackDays, threshold)
	tickerA = normalizeTicker(tickerA)
	tickerB = normalizeTicker(tickerB)

	seriesA, seriesB, meta, err := s.fetchPair(ctx, tickerA, tickerB, lookbackDays)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
		return nil, err
	}

	result, err := s.engine.TestPair(ctx, seriesA, seriesB, threshold)
	s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	return &PairTestResult{
		TickerA:             tickerA,
		TickerB:             tickerB,
		CointegrationResult: result,
		Meta:                meta,
	}, nil
}

// FindPairs scans every 2-combination of the universe for cointegration.
// Tickers whose fetch fails are skipped, not fatal; the retained pairs come
// back sorted by ascending p-value.
func (s *StatArbService) FindPairs(ctx context.Context, tickers []string, lookbackDays int, threshold float64) (*PairScanResult, error) {
	started := time.Now()
	lookbackDays, threshold = s.applyDefaults(lookbackDays, threshold)

	tickers = normalizeTickers(tickers)
	if len(tickers) < config.MinTickersCorrelation {
		return nil, apierrors.NewValidation("tickers",
			fmt.Sprintf("at least %d distinct tickers required for a pair scan", config.MinTickersCorrelation),
			len(tickers))
	}

	start, end := lookbackRange(lookbackDays)
	table, missing, err := s.data.FetchHistory(ctx, tickers, start, end)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	universe := statarb.Universe{Tickers: tickers, Series: table.Closes}
	scan, err := s.engine.FindPairs(ctx, universe, threshold)
	s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordPairsScanned(ctx, scan.TotalCombinationsTested)

	sort.SliceStable(scan.Pairs, func(i, j int) bool {
		return scan.Pairs[i].PValue < scan.Pairs[j].PValue
	})

	return &PairScanResult{
		ScanResult: scan,
		Meta:       tableMeta(table, missing, lookbackDays),
	}, nil
}

// Spread fits a hedge ratio for the pair and generates the rolling-z-score
// spread series with per-date signals. The hedge ratio comes from the same
// Engle-Granger fit the pair test uses, so spread and test responses agree
// for identical inputs.
func (s *StatArbService) Spread(ctx context.Context, params SpreadParams) (*SpreadResult, error) {
	started := time.Now()
	if params.LookbackDays <= 0 {
		params.LookbackDays = s.cfg.DefaultLookbackDays
	}
	if params.Window <= 0 {
		params.Window = s.cfg.DefaultSpreadWindow
	}
	if params.EntryThreshold <= 0 {
		params.EntryThreshold = s.cfg.DefaultEntryThreshold
	}
	exit := s.cfg.DefaultExitThreshold
	if params.ExitThreshold != nil {
		exit = *params.ExitThreshold
	}
	if exit >= params.EntryThreshold {
		return nil, apierrors.NewValidation("exit_threshold",
			fmt.Sprintf("must be below entry_threshold %g", params.EntryThreshold), exit)
	}
	params.TickerA = normalizeTicker(params.TickerA)
	params.TickerB = normalizeTicker(params.TickerB)

	seriesA, seriesB, meta, err := s.fetchPair(ctx, params.TickerA, params.TickerB, params.LookbackDays)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
		return nil, err
	}

	fit, err := statarb.EngleGranger(seriesA, seriesB, s.cfg.SignificanceLevel)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
		return nil, err
	}

	series, err := statarb.ComputeSpread(seriesA, seriesB, fit.HedgeRatio,
		params.Window, params.EntryThreshold, exit)
	s.metrics.RecordAnalysis(ctx, "statarb", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "spread series computed",
		"ticker_a", params.TickerA,
		"ticker_b", params.TickerB,
		"hedge_ratio", fit.HedgeRatio,
		"window", params.Window,
		"points", len(series.Points),
		"duration", time.Since(started),
	)
	return &SpreadResult{
		TickerA:      params.TickerA,
		TickerB:      params.TickerB,
		SpreadSeries: series,
		SignalCounts: series.SignalCounts(),
		Meta:         meta,
	}, nil
}

func (s *StatArbService) applyDefaults(lookbackDays int, threshold float64) (int, float64) {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.DefaultLookbackDays
	}
	if threshold <= 0 {
		threshold = s.cfg.SignificanceLevel
	}
	return lookbackDays, threshold
}

// fetchPair fetches aligned history for exactly two distinct tickers. Both
// must fetch for a pair operation to make sense, so a single miss is an
// insufficient-data failure rather than a partial result.
func (s *StatArbService) fetchPair(ctx context.Context, tickerA, tickerB string, lookbackDays int) (seriesA, seriesB []float64, meta DataMeta, err error) {
	if tickerA == tickerB {
		return nil, nil, DataMeta{}, apierrors.NewValidation("ticker_b",
			"must differ from ticker_a", tickerB)
	}

	start, end := lookbackRange(lookbackDays)
	table, missing, err := s.data.FetchHistory(ctx, []string{tickerA, tickerB}, start, end)
	if err != nil {
		return nil, nil, DataMeta{}, fmt.Errorf("fetch history: %w", err)
	}
	if len(missing) > 0 {
		return nil, nil, DataMeta{}, apierrors.NewInsufficientData("price history",
			fmt.Sprintf("no usable history for %s", strings.Join(missing, ", ")))
	}

	return table.Closes[tickerA], table.Closes[tickerB], tableMeta(table, nil, lookbackDays), nil
}
