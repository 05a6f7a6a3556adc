package statarb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apierrors "quantdesk/internal/errors"
)

// Engine runs cointegration tests and universe scans with structured
// logging and bounded concurrency. The underlying computations are pure;
// the engine adds orchestration only.
type Engine struct {
	logger     *slog.Logger
	maxWorkers int
}

// NewEngine creates a pairs engine. A non-positive maxWorkers falls back to
// DefaultMaxWorkers.
func NewEngine(logger *slog.Logger, maxWorkers int) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}
	return &Engine{logger: logger, maxWorkers: maxWorkers}
}

// TestPair runs the Engle-Granger test on one aligned pair.
func (e *Engine) TestPair(ctx context.Context, seriesA, seriesB []float64, threshold float64) (*CointegrationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	result, err := EngleGranger(seriesA, seriesB, threshold)
	if err != nil {
		e.logger.WarnContext(ctx, "cointegration test failed",
			"observations", len(seriesA),
			"error", err,
		)
		return nil, err
	}

	e.logger.InfoContext(ctx, "cointegration test complete",
		"p_value", result.PValue,
		"statistic", result.TestStatistic,
		"cointegrated", result.IsCointegrated,
		"hedge_ratio", result.HedgeRatio,
		"observations", result.Observations,
		"duration", time.Since(start),
	)
	return result, nil
}

// pairJob is one combination of the scan in generation order.
type pairJob struct {
	index   int
	tickerA string
	tickerB string
}

// FindPairs tests every unordered 2-combination of the universe and retains
// the pairs whose p-value falls below the threshold.
//
// Combinations are generated in lexicographic order over the universe's
// ticker order and the retained pairs keep that order; callers sort by
// p-value or otherwise as needed. Combinations touching a ticker without a
// price series (a failed fetch upstream) are skipped and excluded from
// TotalCombinationsTested. Combinations whose individual test fails, for
// example on insufficient overlap, count as tested but are not retained.
//
// Tests run concurrently under a worker bound; each result lands in a slot
// keyed by its combination index, so output order never depends on
// completion order.
func (e *Engine) FindPairs(ctx context.Context, universe Universe, threshold float64) (*ScanResult, error) {
	if len(universe.Tickers) < 2 {
		return nil, apierrors.NewValidation("tickers",
			"at least 2 tickers required for a pair scan", len(universe.Tickers))
	}
	if threshold <= 0 {
		threshold = DefaultPValueThreshold
	}
	start := time.Now()

	var jobs []pairJob
	skipped := 0
	for i := 0; i < len(universe.Tickers); i++ {
		for j := i + 1; j < len(universe.Tickers); j++ {
			a := universe.Tickers[i]
			b := universe.Tickers[j]
			if len(universe.Series[a]) == 0 || len(universe.Series[b]) == 0 {
				skipped++
				e.logger.WarnContext(ctx, "skipping pair, price history missing",
					"ticker_a", a,
					"ticker_b", b,
				)
				continue
			}
			jobs = append(jobs, pairJob{index: len(jobs), tickerA: a, tickerB: b})
		}
	}

	e.logger.InfoContext(ctx, "starting pair scan",
		"tickers", len(universe.Tickers),
		"combinations", len(jobs),
		"skipped", skipped,
		"threshold", threshold,
		"max_workers", e.maxWorkers,
	)

	// One slot per combination; a nil slot after the scan means the pair
	// was not cointegrated or its test failed.
	slots := make([]*PairResult, len(jobs))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.maxWorkers)

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("pair scan cancelled: %w", ctx.Err())
		default:
		}

		wg.Add(1)
		go func(j pairJob) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			result, err := EngleGranger(universe.Series[j.tickerA], universe.Series[j.tickerB], threshold)
			if err != nil {
				e.logger.DebugContext(ctx, "pair test failed",
					"ticker_a", j.tickerA,
					"ticker_b", j.tickerB,
					"error", err,
				)
				return
			}
			if result.IsCointegrated {
				slots[j.index] = &PairResult{
					TickerA:             j.tickerA,
					TickerB:             j.tickerB,
					CointegrationResult: *result,
				}
			}
		}(job)
	}

	wg.Wait()

	pairs := make([]PairResult, 0, len(jobs))
	for _, slot := range slots {
		if slot != nil {
			pairs = append(pairs, *slot)
		}
	}

	result := &ScanResult{
		Pairs:                   pairs,
		TotalCombinationsTested: len(jobs),
		CointegratedCount:       len(pairs),
		Skipped:                 skipped,
	}

	e.logger.InfoContext(ctx, "pair scan complete",
		"tested", result.TotalCombinationsTested,
		"cointegrated", result.CointegratedCount,
		"skipped", result.Skipped,
		"duration", time.Since(start),
	)
	return result, nil
}
