package options

// Solver parameters for the Newton-Raphson inversion.
const (
	// MaxIterations bounds the Newton-Raphson loop.
	MaxIterations = 100

	// Tolerance is the convergence threshold in price units: the solve
	// succeeds once |model price - market price| falls below it.
	Tolerance = 1e-4

	// InitialGuess is the volatility the iteration starts from.
	InitialGuess = 0.20

	// MinVolatility and MaxVolatility bound the admissible solution.
	// Updates are clamped into [MinVolatility, MaxVolatility]; a solve
	// pinned against a bound stagnates and fails.
	MinVolatility = 0.001
	MaxVolatility = 5.0

	// MinVega is the derivative floor below which the Newton step is
	// numerically meaningless and the solve fails.
	MinVega = 1e-8

	// intrinsicTolerance rejects quotes below 99% of intrinsic value,
	// which no non-negative volatility can reproduce.
	intrinsicTolerance = 0.99

	// stagnationTolerance detects a stalled iteration: an update smaller
	// than this without convergence means the solver is stuck.
	stagnationTolerance = 1e-10
)

// DefaultMaxWorkers bounds concurrent per-contract solves when the caller
// does not configure a limit.
const DefaultMaxWorkers = 16

// OptionType identifies the side of an option contract.
type OptionType string

// Supported option types.
const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// IsValid reports whether the option type is one of the supported sides.
func (t OptionType) IsValid() bool {
	return t == Call || t == Put
}

// Contract is a single options-chain entry. Bid, Ask, Volume, OpenInterest
// and TimeToExpiry come from the market-data provider; MidPrice, Moneyness
// and ImpliedVolatility are filled in by the engine.
type Contract struct {
	Strike       float64    `json:"strike"`
	Expiration   string     `json:"expiration"`
	Type         OptionType `json:"option_type"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	Volume       int64      `json:"volume"`
	OpenInterest int64      `json:"open_interest"`

	// TimeToExpiry is the remaining lifetime in years (ACT/365).
	TimeToExpiry float64 `json:"time_to_expiry"`

	// MidPrice is (bid+ask)/2, the price the solver inverts.
	MidPrice float64 `json:"mid_price"`

	// Moneyness is strike/spot.
	Moneyness float64 `json:"moneyness"`

	// ImpliedVolatility is nil when the contract could not be solved.
	ImpliedVolatility *float64 `json:"implied_volatility"`
}

// IVRange summarises the solved volatilities on one side of the chain.
type IVRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// SurfaceMetrics aggregates a solved chain. Pointer fields are nil when the
// underlying population is empty: an ATM level needs at least one solved
// contract on that side, the skew needs solved out-of-the-money contracts
// on both sides, a range needs at least one solved contract.
type SurfaceMetrics struct {
	ATMCallIV   *float64 `json:"atm_call_iv"`
	ATMPutIV    *float64 `json:"atm_put_iv"`
	ATMIVAvg    *float64 `json:"atm_iv_avg"`
	PutCallSkew *float64 `json:"put_call_skew"`

	IVRangeCalls *IVRange `json:"iv_range_calls"`
	IVRangePuts  *IVRange `json:"iv_range_puts"`

	TotalCallContracts int `json:"total_call_contracts"`
	TotalPutContracts  int `json:"total_put_contracts"`
	SuccessfulCallIVs  int `json:"successful_call_ivs"`
	SuccessfulPutIVs   int `json:"successful_put_ivs"`

	// ExpirationDates lists the distinct expirations present in the chain,
	// sorted ascending.
	ExpirationDates []string `json:"expiration_dates"`
}

// Surface is a fully solved options chain.
type Surface struct {
	SpotPrice    float64        `json:"spot_price"`
	RiskFreeRate float64        `json:"risk_free_rate"`
	Contracts    []Contract     `json:"contracts"`
	Metrics      SurfaceMetrics `json:"metrics"`
}
