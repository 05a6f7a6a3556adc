package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quantdesk/internal/config"
	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/hrp"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/marketdata"
)

// CorrelationResult is one correlation matrix over aligned daily returns,
// with the matrix repeated in long form for heatmap rendering.
type CorrelationResult struct {
	Tickers []string          `json:"tickers"`
	Matrix  [][]float64       `json:"matrix"`
	Heatmap []hrp.HeatmapCell `json:"heatmap_data"`
	Meta    DataMeta          `json:"metadata"`
}

// HRPResult pairs a clustering result with the history metadata behind it.
type HRPResult struct {
	*hrp.Result
	Meta DataMeta `json:"metadata"`
}

// HRPService orchestrates portfolio clustering: fetch aligned history,
// derive the correlation matrix of daily returns, run the clustering
// engine.
type HRPService struct {
	data    MarketData
	engine  *hrp.Engine
	cfg     config.AnalyticsConfig
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewHRPService creates the clustering service. metrics may be nil to
// disable business metrics.
func NewHRPService(data MarketData, cfg config.AnalyticsConfig, metrics *infrastructure.Metrics, logger *slog.Logger) *HRPService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "hrp")
	return &HRPService{
		data:    data,
		engine:  hrp.NewEngine(logger),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Correlation computes the correlation matrix of daily returns for the
// tickers over the lookback window. A non-positive lookbackDays applies the
// configured default.
func (s *HRPService) Correlation(ctx context.Context, tickers []string, lookbackDays int) (*CorrelationResult, error) {
	started := time.Now()
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.DefaultLookbackDays
	}

	corr, meta, err := s.correlationFromHistory(ctx, tickers, lookbackDays, config.MinTickersCorrelation)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "hrp", time.Since(started), err)
		return nil, err
	}

	// Identity order: the heatmap mirrors the matrix as requested, the
	// seriated variant comes from Analyze.
	cells, err := hrp.HeatmapCells(corr, corr.Tickers)
	s.metrics.RecordAnalysis(ctx, "hrp", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "correlation matrix computed",
		"tickers", len(corr.Tickers),
		"observations", meta.Observations,
		"duration", time.Since(started),
	)
	return &CorrelationResult{
		Tickers: corr.Tickers,
		Matrix:  corr.Values,
		Heatmap: cells,
		Meta:    meta,
	}, nil
}

// Analyze runs the full clustering flow over the tickers: history,
// returns, correlation, distance, linkage, seriation. Empty linkage and
// non-positive lookbackDays apply the configured defaults.
func (s *HRPService) Analyze(ctx context.Context, tickers []string, lookbackDays int, linkage string) (*HRPResult, error) {
	started := time.Now()
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.DefaultLookbackDays
	}
	if linkage == "" {
		linkage = s.cfg.DefaultLinkage
	}

	method, err := hrp.ParseLinkage(linkage)
	if err != nil {
		return nil, err
	}

	corr, meta, err := s.correlationFromHistory(ctx, tickers, lookbackDays, config.MinTickersAnalyze)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "hrp", time.Since(started), err)
		return nil, err
	}

	result, err := s.engine.Analyze(ctx, corr, method)
	s.metrics.RecordAnalysis(ctx, "hrp", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	return &HRPResult{Result: result, Meta: meta}, nil
}

// correlationFromHistory fetches aligned history for the tickers and
// derives the correlation matrix of their daily returns. minTickers is the
// floor on usable tickers after fetch failures drop out.
func (s *HRPService) correlationFromHistory(ctx context.Context, tickers []string, lookbackDays, minTickers int) (*hrp.CorrelationMatrix, DataMeta, error) {
	tickers = normalizeTickers(tickers)
	if len(tickers) < minTickers {
		return nil, DataMeta{}, apierrors.NewValidation("tickers",
			fmt.Sprintf("at least %d distinct tickers required", minTickers), len(tickers))
	}

	start, end := lookbackRange(lookbackDays)
	table, missing, err := s.data.FetchHistory(ctx, tickers, start, end)
	if err != nil {
		return nil, DataMeta{}, fmt.Errorf("fetch history: %w", err)
	}
	if len(table.Tickers) < minTickers {
		return nil, DataMeta{}, apierrors.NewInsufficientData("price history",
			fmt.Sprintf("only %d of %d tickers have usable history, %d required",
				len(table.Tickers), len(tickers), minTickers))
	}

	returns := marketdata.DailyReturns(table)
	matrix, err := marketdata.CorrelationMatrix(returns)
	if err != nil {
		return nil, DataMeta{}, err
	}

	corr := &hrp.CorrelationMatrix{Tickers: returns.Tickers, Values: matrix}
	return corr, tableMeta(table, missing, lookbackDays), nil
}
