package statarb

import (
	"math"

	apierrors "quantdesk/internal/errors"
)

// EngleGranger runs the two-step Engle-Granger cointegration test on an
// aligned pair of price series.
//
// Step one fits seriesA = alpha + beta*seriesB + epsilon by OLS; beta is the
// hedge ratio. Step two runs an augmented Dickey-Fuller test on the fit
// residuals: stationary residuals mean deviations from the fitted
// relationship die out, so the pair is cointegrated when the ADF p-value is
// below the threshold (DefaultPValueThreshold when the caller passes a
// non-positive value).
//
// The result also carries the mean-reversion half-life (nil when the
// residuals do not revert), the raw spread mean and standard deviation used
// for z-scoring, and the Pearson correlation of the input series.
//
// The p-value and statistic are effectively symmetric in the pair order;
// the hedge ratio and half-life are not, since they come from a directed
// regression of A on B.
//
// Reference: Engle, R.F. and Granger, C.W.J. (1987). "Co-integration and
// Error Correction: Representation, Estimation, and Testing".
// Econometrica, 55(2), pp.251-276.
func EngleGranger(seriesA, seriesB []float64, threshold float64) (*CointegrationResult, error) {
	if len(seriesA) != len(seriesB) {
		return nil, apierrors.NewValidation("series",
			"series must be aligned to the same length",
			map[string]int{"a": len(seriesA), "b": len(seriesB)})
	}
	n := len(seriesA)
	if n < MinObservations {
		return nil, apierrors.NewInsufficientObservations("pair", MinObservations, n)
	}
	if threshold <= 0 {
		threshold = DefaultPValueThreshold
	}

	fit, err := FitOLS(seriesA, seriesB)
	if err != nil {
		return nil, err
	}

	adf, err := ADFTest(fit.Residuals)
	if err != nil {
		return nil, err
	}

	// The tradeable spread omits the intercept, so its mean is close to
	// alpha rather than zero.
	spread := make([]float64, n)
	for i := 0; i < n; i++ {
		spread[i] = seriesA[i] - fit.Beta*seriesB[i]
	}

	return &CointegrationResult{
		PValue:         adf.PValue,
		TestStatistic:  adf.Statistic,
		CriticalValues: adf.CriticalValues,
		IsCointegrated: adf.PValue < threshold,
		HedgeRatio:     fit.Beta,
		HalfLife:       HalfLife(fit.Residuals),
		SpreadMean:     mean(spread),
		SpreadStd:      sampleStd(spread),
		Correlation:    PearsonCorrelation(seriesA, seriesB),
		Observations:   n,
	}, nil
}

// HalfLife estimates the mean-reversion half-life of a residual series in
// observation units (trading days for daily data).
//
// An AR(1) fit regresses the one-step change on the lagged level with no
// intercept:
//
//	diff(e)_t = theta*e_{t-1} + u_t
//
// giving lambda = 1 + theta as the AR coefficient, and
//
//	halfLife = -ln(2) / ln(lambda)
//
// Mean reversion requires lambda in (0, 1). Outside that range, the series
// does not decay toward its mean and the half-life is undefined: the result
// is nil, never a clamped or sentinel number of days.
func HalfLife(residuals []float64) *float64 {
	if len(residuals) < 3 {
		return nil
	}

	y := make([]float64, len(residuals)-1)
	x := make([]float64, len(residuals)-1)
	for t := 1; t < len(residuals); t++ {
		y[t-1] = residuals[t] - residuals[t-1]
		x[t-1] = residuals[t-1]
	}

	theta := slopeThroughOrigin(y, x)
	if !isFinite(theta) {
		return nil
	}

	lambda := 1 + theta
	if lambda <= 0 || lambda >= 1 {
		return nil
	}

	halfLife := -math.Ln2 / math.Log(lambda)
	if !isFinite(halfLife) || halfLife <= 0 {
		return nil
	}
	return &halfLife
}
