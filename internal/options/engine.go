package options

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apierrors "quantdesk/internal/errors"
)

// Engine solves implied volatilities across options chains with structured
// logging and bounded concurrency. The underlying pricer and solver are
// pure; the engine adds orchestration only.
type Engine struct {
	logger     *slog.Logger
	maxWorkers int
}

// NewEngine creates a volatility-surface engine. A non-positive maxWorkers
// falls back to DefaultMaxWorkers.
func NewEngine(logger *slog.Logger, maxWorkers int) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Engine{logger: logger, maxWorkers: maxWorkers}
}

// ComputeSurface solves every contract's implied volatility and aggregates
// the surface metrics.
//
// Each contract's mid price ((bid+ask)/2) and moneyness (strike/spot) are
// filled in before solving. Solves run concurrently under a worker bound;
// each result lands in a slot keyed by the contract's index, so output order
// matches input order regardless of completion order. A contract that cannot
// be solved keeps a nil implied volatility and still counts toward its
// side's total, so a handful of stale quotes never abort the chain.
func (e *Engine) ComputeSurface(ctx context.Context, contracts []Contract, spot, riskFreeRate, dividendYield float64) (*Surface, error) {
	if !isFinite(spot) || spot <= 0 {
		return nil, apierrors.NewInvalidParameter("spot", "must be a positive finite number", spot)
	}
	if !isFinite(riskFreeRate) {
		return nil, apierrors.NewInvalidParameter("risk_free_rate", "must be a finite number", riskFreeRate)
	}
	if !isFinite(dividendYield) {
		return nil, apierrors.NewInvalidParameter("dividend_yield", "must be a finite number", dividendYield)
	}
	start := time.Now()

	solved := make([]Contract, len(contracts))
	for i, c := range contracts {
		c.MidPrice = (c.Bid + c.Ask) / 2
		c.Moneyness = c.Strike / spot
		c.ImpliedVolatility = nil
		solved[i] = c
	}

	e.logger.InfoContext(ctx, "starting iv solve",
		"contracts", len(solved),
		"spot", spot,
		"risk_free_rate", riskFreeRate,
		"max_workers", e.maxWorkers,
	)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.maxWorkers)

	for i := range solved {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("iv solve cancelled: %w", ctx.Err())
		default:
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			c := &solved[idx]
			c.ImpliedVolatility = Solve(c.MidPrice, spot, c.Strike, c.TimeToExpiry, riskFreeRate, dividendYield, c.Type)
		}(i)
	}

	wg.Wait()

	surface := &Surface{
		SpotPrice:    spot,
		RiskFreeRate: riskFreeRate,
		Contracts:    solved,
		Metrics:      computeMetrics(solved),
	}

	e.logger.InfoContext(ctx, "iv surface computed",
		"calls_solved", surface.Metrics.SuccessfulCallIVs,
		"calls_total", surface.Metrics.TotalCallContracts,
		"puts_solved", surface.Metrics.SuccessfulPutIVs,
		"puts_total", surface.Metrics.TotalPutContracts,
		"expirations", len(surface.Metrics.ExpirationDates),
		"duration", time.Since(start),
	)
	return surface, nil
}
