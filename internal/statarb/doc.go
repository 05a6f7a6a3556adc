// Package statarb implements pairwise cointegration testing and spread
// signal generation for statistical arbitrage over equity price series.
//
// The package detects mean-reverting pairs with the Engle-Granger two-step
// method: an ordinary least squares fit of one price series on the other
// produces the hedge ratio, and an augmented Dickey-Fuller regression on the
// fit residuals tests them for a unit root. Residual stationarity (a small
// p-value) means the spread between the two assets reverts to its mean and
// can be traded with z-score entry and exit thresholds.
//
// # Core Components
//
//  1. Engle-Granger test: OLS hedge ratio plus ADF unit-root test on the
//     residuals, with MacKinnon critical values and interpolated p-values.
//  2. Mean-reversion half-life: AR(1) regression of residual changes on
//     lagged residual levels; undefined (nil) when the series does not
//     revert.
//  3. Spread generator: raw spread, rolling z-score over a trailing window
//     and a stateless per-date signal classifier (long, short, exit, none).
//  4. Pair scanner: every unordered 2-combination of a ticker universe
//     tested concurrently under a bounded worker pool.
//
// # Architecture
//
//   - types.go: signals, universe, cointegration and scan result types
//   - ols.go: least-squares fits and correlation primitives
//   - adf.go: augmented Dickey-Fuller regression and MacKinnon p-values
//   - cointegration.go: Engle-Granger orchestration and half-life
//   - spread.go: rolling z-score spread series and signal classification
//   - engine.go: logged entry points and the concurrent pair scan
//
// # Usage Example
//
//	engine := statarb.NewEngine(slog.Default(), 8)
//	result, err := engine.TestPair(ctx, seriesA, seriesB, 0.05)
//	if err != nil {
//	    return err
//	}
//	if result.IsCointegrated {
//	    spread, _ := statarb.ComputeSpread(seriesA, seriesB, result.HedgeRatio, 20, 2.0, 0.5)
//	    _ = spread
//	}
//
// All computations are pure functions over already-fetched numeric series:
// no I/O, no shared state, safe for concurrent use.
//
// References:
//   - Engle, R.F. and Granger, C.W.J. (1987). "Co-integration and Error
//     Correction: Representation, Estimation, and Testing". Econometrica 55(2).
//   - MacKinnon, J.G. (2010). "Critical Values for Cointegration Tests".
//     Queen's Economics Department Working Paper No. 1227.
package statarb
