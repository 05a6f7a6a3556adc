package options

import (
	"math"

	apierrors "quantdesk/internal/errors"
)

// Price computes the Black-Scholes-Merton value of a European option on an
// asset paying a continuous dividend yield.
//
// With d1 = [ln(S/K) + (r - q + sigma^2/2)T] / (sigma sqrt(T)) and
// d2 = d1 - sigma sqrt(T):
//
//	call = S e^(-qT) N(d1) - K e^(-rT) N(d2)
//	put  = K e^(-rT) N(-d2) - S e^(-qT) N(-d1)
//
// Parameters:
//   - spot: current underlying price S, must be positive
//   - strike: strike price K, must be positive
//   - timeToExpiry: remaining lifetime T in years, must be positive
//   - rate: continuously compounded risk-free rate r
//   - dividendYield: continuous dividend yield q
//   - sigma: volatility, must be positive
//   - optionType: Call or Put
//
// Returns the option value, floored at zero to absorb floating-point noise
// on deep out-of-the-money contracts.
//
// Reference: Black, F. and Scholes, M. (1973). "The Pricing of Options and
// Corporate Liabilities". Journal of Political Economy, 81(3), 637-654.
func Price(spot, strike, timeToExpiry, rate, dividendYield, sigma float64, optionType OptionType) (float64, error) {
	if err := validatePricingInputs(spot, strike, timeToExpiry, rate, dividendYield, sigma); err != nil {
		return 0, err
	}
	if !optionType.IsValid() {
		return 0, apierrors.NewValidation("option_type", "must be 'call' or 'put'", string(optionType))
	}

	d1, d2 := dValues(spot, strike, timeToExpiry, rate, dividendYield, sigma)
	discSpot := spot * math.Exp(-dividendYield*timeToExpiry)
	discStrike := strike * math.Exp(-rate*timeToExpiry)

	var price float64
	if optionType == Call {
		price = discSpot*normCDF(d1) - discStrike*normCDF(d2)
	} else {
		price = discStrike*normCDF(-d2) - discSpot*normCDF(-d1)
	}
	return math.Max(price, 0), nil
}

// Vega computes the sensitivity of the Black-Scholes-Merton price to
// volatility:
//
//	vega = S e^(-qT) phi(d1) sqrt(T)
//
// where phi is the standard normal density. Vega is identical for calls and
// puts. Parameter constraints match Price.
func Vega(spot, strike, timeToExpiry, rate, dividendYield, sigma float64) (float64, error) {
	if err := validatePricingInputs(spot, strike, timeToExpiry, rate, dividendYield, sigma); err != nil {
		return 0, err
	}

	d1, _ := dValues(spot, strike, timeToExpiry, rate, dividendYield, sigma)
	return spot * math.Exp(-dividendYield*timeToExpiry) * normPDF(d1) * math.Sqrt(timeToExpiry), nil
}

func validatePricingInputs(spot, strike, timeToExpiry, rate, dividendYield, sigma float64) error {
	switch {
	case !isFinite(spot) || spot <= 0:
		return apierrors.NewInvalidParameter("spot", "must be a positive finite number", spot)
	case !isFinite(strike) || strike <= 0:
		return apierrors.NewInvalidParameter("strike", "must be a positive finite number", strike)
	case !isFinite(timeToExpiry) || timeToExpiry <= 0:
		return apierrors.NewInvalidParameter("time_to_expiry", "must be a positive finite number", timeToExpiry)
	case !isFinite(rate):
		return apierrors.NewInvalidParameter("rate", "must be a finite number", rate)
	case !isFinite(dividendYield):
		return apierrors.NewInvalidParameter("dividend_yield", "must be a finite number", dividendYield)
	case !isFinite(sigma) || sigma <= 0:
		return apierrors.NewInvalidParameter("sigma", "must be a positive finite number", sigma)
	}
	return nil
}

func dValues(spot, strike, timeToExpiry, rate, dividendYield, sigma float64) (d1, d2 float64) {
	volTime := sigma * math.Sqrt(timeToExpiry)
	d1 = (math.Log(spot/strike) + (rate-dividendYield+0.5*sigma*sigma)*timeToExpiry) / volTime
	d2 = d1 - volTime
	return d1, d2
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / math.Sqrt(2*math.Pi)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
