// Package options implements Black-Scholes-Merton pricing, Newton-Raphson
// implied-volatility inversion and volatility-surface aggregation over
// options-chain snapshots.
//
// Each contract's market mid price is inverted through the pricing formula
// to recover the volatility the market implies. Deep in- or out-of-the-money
// contracts, stale quotes and prices below intrinsic value have no solvable
// volatility; those contracts carry a nil IV rather than an error, so one
// bad quote never aborts a chain. Surface metrics (at-the-money levels,
// put-call skew, per-side ranges and solve counts) aggregate only the
// contracts that solved.
//
// # Architecture
//
//   - types.go: option types, contracts, surface and metrics structures
//   - blackscholes.go: closed-form price and vega
//   - solver.go: Newton-Raphson inversion with the nil-on-failure policy
//   - surface.go: surface metric aggregation
//   - engine.go: concurrent per-chain solving and logging
//
// # Usage Example
//
//	engine := options.NewEngine(slog.Default(), 16)
//	surface, err := engine.ComputeSurface(ctx, contracts, spot, rate, 0)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("solved %d/%d calls\n",
//	    surface.Metrics.SuccessfulCallIVs, surface.Metrics.TotalCallContracts)
//
// References:
//   - Black, F. and Scholes, M. (1973). "The Pricing of Options and
//     Corporate Liabilities". Journal of Political Economy, 81(3).
//   - Merton, R.C. (1973). "Theory of Rational Option Pricing". The Bell
//     Journal of Economics and Management Science, 4(1).
package options
