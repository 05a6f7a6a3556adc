package options

import "math"

// Solve inverts the Black-Scholes-Merton formula with Newton-Raphson
// iteration to recover the volatility implied by a market price.
//
// Failure is an expected per-contract outcome, not an error: stale quotes,
// prices below intrinsic value, vanishing vega and iterations driven against
// the volatility bounds all return nil. Callers treat a nil result as "no
// implied volatility for this contract" and carry on with the rest of the
// chain.
//
// Parameters:
//   - marketPrice: observed option price, typically the bid/ask mid
//   - spot, strike, timeToExpiry, rate, dividendYield: as in Price
//   - optionType: Call or Put
//
// Returns a pointer to the implied volatility in (MinVolatility,
// MaxVolatility], or nil when no admissible volatility reproduces the price.
func Solve(marketPrice, spot, strike, timeToExpiry, rate, dividendYield float64, optionType OptionType) *float64 {
	return solve(marketPrice, spot, strike, timeToExpiry, rate, dividendYield, optionType, MaxIterations)
}

func solve(marketPrice, spot, strike, timeToExpiry, rate, dividendYield float64, optionType OptionType, maxIterations int) *float64 {
	if !isFinite(marketPrice) || marketPrice <= 0 {
		return nil
	}
	if !isFinite(spot) || spot <= 0 || !isFinite(strike) || strike <= 0 {
		return nil
	}
	if !isFinite(timeToExpiry) || timeToExpiry <= 0 {
		return nil
	}
	if !isFinite(rate) || !isFinite(dividendYield) {
		return nil
	}
	if !optionType.IsValid() {
		return nil
	}

	// A price below intrinsic value admits no non-negative volatility.
	var intrinsic float64
	if optionType == Call {
		intrinsic = math.Max(spot-strike, 0)
	} else {
		intrinsic = math.Max(strike-spot, 0)
	}
	if marketPrice < intrinsic*intrinsicTolerance {
		return nil
	}

	sigma := InitialGuess
	for i := 0; i < maxIterations; i++ {
		price, err := Price(spot, strike, timeToExpiry, rate, dividendYield, sigma, optionType)
		if err != nil {
			return nil
		}
		diff := price - marketPrice
		if math.Abs(diff) < Tolerance {
			if sigma > MinVolatility && sigma <= MaxVolatility {
				return &sigma
			}
			return nil
		}

		vega, err := Vega(spot, strike, timeToExpiry, rate, dividendYield, sigma)
		if err != nil {
			return nil
		}
		if math.Abs(vega) < MinVega {
			return nil
		}

		next := sigma - diff/vega
		if next < MinVolatility {
			next = MinVolatility
		} else if next > MaxVolatility {
			next = MaxVolatility
		}

		// An update below the stagnation threshold without convergence
		// means the iteration is pinned, usually against a bound.
		if math.Abs(next-sigma) < stagnationTolerance {
			return nil
		}
		sigma = next
	}
	return nil
}
