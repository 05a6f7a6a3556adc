package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quantdesk/internal/config"
	apierrors "quantdesk/internal/errors"
	"quantdesk/internal/infrastructure"
	"quantdesk/internal/marketdata"
	"quantdesk/internal/options"
)

// SurfaceResult is a solved volatility surface together with the request
// scope that produced it.
type SurfaceResult struct {
	Ticker           string                      `json:"ticker"`
	ExpirationFilter marketdata.ExpirationFilter `json:"expiration_filter"`
	MinVolume        int64                       `json:"min_volume"`
	AsOf             time.Time                   `json:"as_of"`
	*options.Surface
}

// OptionsService orchestrates implied-volatility surfaces: fetch the chain
// snapshot, clean and filter it, solve every contract.
type OptionsService struct {
	data    MarketData
	engine  *options.Engine
	cfg     config.AnalyticsConfig
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewOptionsService creates the surface service. metrics may be nil to
// disable business metrics.
func NewOptionsService(data MarketData, cfg config.AnalyticsConfig, metrics *infrastructure.Metrics, logger *slog.Logger) *OptionsService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("service", "options")
	return &OptionsService{
		data:    data,
		engine:  options.NewEngine(logger, cfg.MaxSolveWorkers),
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Surface fetches the option chain for the ticker and solves the implied
// volatility of every cleaned contract. An empty expiration applies the
// configured default filter; a negative minVolume applies the configured
// volume floor.
func (s *OptionsService) Surface(ctx context.Context, ticker, expiration string, minVolume int64) (*SurfaceResult, error) {
	started := time.Now()
	ticker = normalizeTicker(ticker)

	if expiration == "" {
		expiration = s.cfg.DefaultExpirationFilter
	}
	filter := marketdata.ExpirationFilter(expiration)
	if !filter.IsValid() {
		return nil, apierrors.NewValidation("expiration",
			"must be one of first, near_term, all", expiration)
	}
	if minVolume < 0 {
		minVolume = s.cfg.DefaultMinVolume
	}

	snap, err := s.data.FetchOptionChain(ctx, ticker)
	if err != nil {
		s.metrics.RecordAnalysis(ctx, "options", time.Since(started), err)
		return nil, fmt.Errorf("fetch option chain: %w", err)
	}

	contracts := marketdata.CleanChain(snap.Contracts, minVolume, time.Now().UTC())
	contracts = marketdata.FilterByExpiration(contracts, filter)
	if len(contracts) == 0 {
		err := apierrors.NewInsufficientData(ticker,
			fmt.Sprintf("no solvable contracts after cleaning and the %s expiration filter", filter))
		s.metrics.RecordAnalysis(ctx, "options", time.Since(started), err)
		return nil, err
	}

	// The provider quotes no dividend yield, so pricing assumes none.
	surface, err := s.engine.ComputeSurface(ctx, contracts, snap.SpotPrice, snap.RiskFreeRate, 0)
	s.metrics.RecordAnalysis(ctx, "options", time.Since(started), err)
	if err != nil {
		return nil, err
	}

	solved := int64(surface.Metrics.SuccessfulCallIVs + surface.Metrics.SuccessfulPutIVs)
	total := int64(surface.Metrics.TotalCallContracts + surface.Metrics.TotalPutContracts)
	s.metrics.RecordIVSolves(ctx, solved, total-solved)

	s.logger.InfoContext(ctx, "volatility surface computed",
		"ticker", ticker,
		"expiration_filter", string(filter),
		"contracts", total,
		"solved", solved,
		"duration", time.Since(started),
	)
	return &SurfaceResult{
		Ticker:           ticker,
		ExpirationFilter: filter,
		MinVolume:        minVolume,
		AsOf:             snap.AsOf,
		Surface:          surface,
	}, nil
}
