package statarb

const (
	// MinObservations is the minimum aligned observation count for a
	// cointegration test. The Engle-Granger regressions estimate four
	// parameters in total, so shorter series produce unstable statistics.
	MinObservations = 30

	// DefaultPValueThreshold flags a pair as cointegrated.
	DefaultPValueThreshold = 0.05

	// DefaultWindow is the rolling z-score window in trading days.
	DefaultWindow = 20

	// DefaultEntryThreshold opens a position when |z| reaches it.
	DefaultEntryThreshold = 2.0

	// DefaultExitThreshold closes a position when |z| falls inside it.
	DefaultExitThreshold = 0.5

	// DefaultMaxWorkers bounds the concurrent pair scan.
	DefaultMaxWorkers = 8
)

// Signal classifies one date of a spread series.
type Signal string

const (
	// SignalLong buys the spread: z-score at or below the negative entry threshold.
	SignalLong Signal = "long"
	// SignalShort sells the spread: z-score at or above the entry threshold.
	SignalShort Signal = "short"
	// SignalExit closes an open position: |z-score| at or inside the exit threshold.
	SignalExit Signal = "exit"
	// SignalNone means no action for the date.
	SignalNone Signal = "none"
)

// OLSFit holds an ordinary least squares fit of y on x with an intercept.
type OLSFit struct {
	Alpha     float64   // intercept
	Beta      float64   // slope
	Residuals []float64 // y - (alpha + beta*x), same length as the inputs
}

// ADFResult holds an augmented Dickey-Fuller unit-root test outcome.
type ADFResult struct {
	Statistic      float64            `json:"statistic"`       // t-statistic of the lagged level coefficient
	PValue         float64            `json:"p_value"`         // interpolated MacKinnon p-value
	CriticalValues map[string]float64 `json:"critical_values"` // keyed "1%", "5%", "10%"
	Lags           int                `json:"lags"`            // lagged differences included
	Observations   int                `json:"observations"`    // usable regression observations
}

// CointegrationResult reports an Engle-Granger test for one ordered pair.
// HalfLife is nil when the residual AR(1) coefficient shows no mean
// reversion; it is never clamped to a placeholder number of days.
type CointegrationResult struct {
	PValue         float64            `json:"p_value"`
	TestStatistic  float64            `json:"test_statistic"`
	CriticalValues map[string]float64 `json:"critical_values"`
	IsCointegrated bool               `json:"is_cointegrated"`
	HedgeRatio     float64            `json:"hedge_ratio"`
	HalfLife       *float64           `json:"half_life"`
	SpreadMean     float64            `json:"spread_mean"`
	SpreadStd      float64            `json:"spread_std"`
	Correlation    float64            `json:"correlation"`
	Observations   int                `json:"observations"`
}

// SpreadPoint is one date of a spread series. ZScore is nil for the warmup
// dates before the rolling window fills and for windows with zero standard
// deviation; those dates always carry SignalNone.
type SpreadPoint struct {
	Spread float64  `json:"spread"`
	ZScore *float64 `json:"zscore"`
	Signal Signal   `json:"signal"`
}

// SpreadStats summarizes the raw spread over the full series.
type SpreadStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// SpreadSeries is the spread, rolling z-score and per-date signal for an
// aligned pair under a fixed hedge ratio.
type SpreadSeries struct {
	HedgeRatio     float64       `json:"hedge_ratio"`
	Window         int           `json:"window"`
	EntryThreshold float64       `json:"entry_threshold"`
	ExitThreshold  float64       `json:"exit_threshold"`
	Points         []SpreadPoint `json:"points"`
	Stats          SpreadStats   `json:"statistics"`
}

// SignalCounts tallies how many dates carried each signal.
func (s *SpreadSeries) SignalCounts() map[Signal]int {
	counts := map[Signal]int{
		SignalLong:  0,
		SignalShort: 0,
		SignalExit:  0,
		SignalNone:  0,
	}
	for _, p := range s.Points {
		counts[p.Signal]++
	}
	return counts
}

// Universe is the input to a pair scan: tickers in generation order and an
// aligned price series per ticker. A ticker missing from Series (or with an
// empty series) marks a failed fetch; pairs touching it are skipped rather
// than tested.
type Universe struct {
	Tickers []string
	Series  map[string][]float64
}

// PairResult is one retained pair from a scan with its full test result.
type PairResult struct {
	TickerA string `json:"ticker_a"`
	TickerB string `json:"ticker_b"`
	CointegrationResult
}

// ScanResult reports a full pair scan. Pairs holds only combinations below
// the p-value threshold, in generation order; callers sort as needed.
// TotalCombinationsTested excludes skipped combinations.
type ScanResult struct {
	Pairs                   []PairResult `json:"pairs"`
	TotalCombinationsTested int          `json:"total_combinations_tested"`
	CointegratedCount       int          `json:"cointegrated_count"`
	Skipped                 int          `json:"skipped"`
}
