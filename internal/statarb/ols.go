package statarb

import (
	"math"

	apierrors "quantdesk/internal/errors"
)

// FitOLS fits y = alpha + beta*x + epsilon by ordinary least squares and
// returns the intercept, slope and residual series.
//
// Parameters:
//   - y: dependent series (the asset being hedged)
//   - x: independent series (the hedge leg)
//
// The slope is the hedge ratio in the Engle-Granger first step. Inputs must
// be aligned: equal length, at least two points, all values finite, and x
// must not be constant (a constant regressor has no defined slope).
func FitOLS(y, x []float64) (*OLSFit, error) {
	if len(y) != len(x) {
		return nil, apierrors.NewValidation("series",
			"series must be aligned to the same length",
			map[string]int{"y": len(y), "x": len(x)})
	}
	n := len(y)
	if n < 2 {
		return nil, apierrors.NewInsufficientObservations("ols", 2, n)
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			return nil, apierrors.NewInsufficientData("ols",
				"series contains non-finite values")
		}
		sumX += x[i]
		sumY += y[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx == 0 {
		return nil, apierrors.NewInsufficientData("ols",
			"independent series is constant")
	}

	beta := sxy / sxx
	alpha := meanY - beta*meanX

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - (alpha + beta*x[i])
	}

	return &OLSFit{Alpha: alpha, Beta: beta, Residuals: residuals}, nil
}

// PearsonCorrelation computes the sample Pearson correlation coefficient of
// two aligned series. Returns NaN when either series is constant or the
// inputs are shorter than two points.
func PearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}

	meanX := mean(x)
	meanY := mean(y)

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

// slopeThroughOrigin regresses y on x without an intercept: the AR(1)
// coefficient regression for half-life estimation. Returns NaN for
// degenerate inputs.
func slopeThroughOrigin(y, x []float64) float64 {
	if len(y) != len(x) || len(y) == 0 {
		return math.NaN()
	}
	var sxx, sxy float64
	for i := range x {
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
	}
	if sxx == 0 {
		return math.NaN()
	}
	return sxy / sxx
}

// mean returns the arithmetic mean of the series, or 0 for an empty series.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd returns the sample standard deviation (n-1 denominator), or 0
// for series shorter than two points.
func sampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// isFinite reports whether v is neither NaN nor infinite.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
