package statarb

import (
	"math"

	apierrors "quantdesk/internal/errors"
)

// adfLags is the number of lagged difference terms in the Dickey-Fuller
// regression. One lag absorbs first-order serial correlation in daily
// residuals without burning observations on higher orders.
const adfLags = 1

// minADFObservations is the shortest residual series the test accepts.
const minADFObservations = 10

// macKinnonSurface holds response-surface coefficients for one quantile of
// the Engle-Granger residual distribution: cv(T) = binf + b1/T + b2/T^2.
type macKinnonSurface struct {
	level string
	p     float64
	binf  float64
	b1    float64
	b2    float64
}

// Response surface for the two-variable cointegration case with a constant
// and no trend, from MacKinnon (2010), "Critical Values for Cointegration
// Tests", Table 2.
var egResponseSurface = [3]macKinnonSurface{
	{level: "1%", p: 0.01, binf: -3.89644, b1: -10.9519, b2: -22.527},
	{level: "5%", p: 0.05, binf: -3.33613, b1: -6.1101, b2: -6.823},
	{level: "10%", p: 0.10, binf: -3.04445, b1: -4.2412, b2: -2.720},
}

// Standard normal quantiles at the surface significance levels, used to map
// the test statistic onto a p-value through the normal CDF.
var egSurfaceQuantiles = [3]float64{
	-2.3263478740408408, // Phi^-1(0.01)
	-1.6448536269514722, // Phi^-1(0.05)
	-1.2815515655446004, // Phi^-1(0.10)
}

// ADFTest runs an augmented Dickey-Fuller unit-root test on a residual
// series from a cointegrating regression.
//
// The regression is
//
//	diff(e)_t = gamma*e_{t-1} + delta*diff(e)_{t-1} + u_t
//
// with no constant term, since OLS residuals are mean zero by construction.
// The reported statistic is the t-ratio of gamma; large negative values
// reject the unit root, meaning the residuals are stationary and the pair
// is cointegrated.
//
// P-values interpolate the MacKinnon (2010) response surface for the
// two-variable Engle-Granger distribution; they are not the plain
// Dickey-Fuller p-values, which would overstate significance on fitted
// residuals.
func ADFTest(series []float64) (*ADFResult, error) {
	m := len(series)
	if m < minADFObservations {
		return nil, apierrors.NewInsufficientObservations("adf", minADFObservations, m)
	}
	for _, v := range series {
		if !isFinite(v) {
			return nil, apierrors.NewInsufficientData("adf",
				"series contains non-finite values")
		}
	}

	// Each observation needs a lagged level and a lagged difference, so
	// the first two points only provide regressors.
	nobs := m - 1 - adfLags

	var s11, s12, s22, sy1, sy2 float64
	for t := 1 + adfLags; t < m; t++ {
		y := series[t] - series[t-1]
		x1 := series[t-1]
		x2 := series[t-1] - series[t-2]

		s11 += x1 * x1
		s12 += x1 * x2
		s22 += x2 * x2
		sy1 += x1 * y
		sy2 += x2 * y
	}

	det := s11*s22 - s12*s12
	if det <= 0 || s11 == 0 {
		return nil, apierrors.NewInsufficientData("adf",
			"residual series is degenerate")
	}

	gamma := (s22*sy1 - s12*sy2) / det
	delta := (s11*sy2 - s12*sy1) / det

	var rss float64
	for t := 1 + adfLags; t < m; t++ {
		y := series[t] - series[t-1]
		x1 := series[t-1]
		x2 := series[t-1] - series[t-2]
		u := y - gamma*x1 - delta*x2
		rss += u * u
	}

	dof := nobs - 2
	if dof <= 0 {
		return nil, apierrors.NewInsufficientObservations("adf", minADFObservations, m)
	}
	gammaVar := (rss / float64(dof)) * (s22 / det)
	if gammaVar <= 0 {
		return nil, apierrors.NewInsufficientData("adf",
			"residual series is perfectly deterministic")
	}

	tau := gamma / math.Sqrt(gammaVar)

	critical := macKinnonCriticalValues(nobs)
	return &ADFResult{
		Statistic: tau,
		PValue:    macKinnonPValue(tau, nobs),
		CriticalValues: map[string]float64{
			egResponseSurface[0].level: critical[0],
			egResponseSurface[1].level: critical[1],
			egResponseSurface[2].level: critical[2],
		},
		Lags:         adfLags,
		Observations: nobs,
	}, nil
}

// macKinnonCriticalValues evaluates the response surface at the regression
// sample size, giving finite-sample critical values at 1%, 5% and 10%.
func macKinnonCriticalValues(nobs int) [3]float64 {
	t := float64(nobs)
	var cv [3]float64
	for i, s := range egResponseSurface {
		cv[i] = s.binf + s.b1/t + s.b2/(t*t)
	}
	return cv
}

// macKinnonPValue maps an ADF statistic onto an approximate p-value.
//
// A quadratic in tau is fitted through the three finite-sample critical
// values paired with their standard normal quantiles, then evaluated at the
// observed statistic and pushed through the normal CDF. At the tabulated
// points the p-value is exact (tau at the 5% critical value gives p = 0.05);
// between and beyond them the normal-score quadratic interpolates the same
// way MacKinnon's published approximations do.
func macKinnonPValue(tau float64, nobs int) float64 {
	// Far outside the tabulated surface the quadratic has no support;
	// the statistic is unambiguous there anyway.
	if tau <= -15 {
		return 0
	}
	if tau >= 2 {
		return 1
	}

	cv := macKinnonCriticalValues(nobs)
	z := egSurfaceQuantiles

	// Newton divided differences through (cv[i], z[i]).
	d1 := (z[1] - z[0]) / (cv[1] - cv[0])
	d2 := (z[2] - z[1]) / (cv[2] - cv[1])
	dd := (d2 - d1) / (cv[2] - cv[0])

	score := z[0] + d1*(tau-cv[0]) + dd*(tau-cv[0])*(tau-cv[1])

	p := normCDF(score)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// normCDF is the standard normal cumulative distribution function.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
