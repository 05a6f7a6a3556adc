package statarb

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quantdesk/internal/errors"
)

// syntheticPair builds a random-walk driver B and a partner
// A = alpha + beta*B + noise, where the noise is strongly mean-reverting
// AR(1). The pair is cointegrated by construction.
func syntheticPair(n int, alpha, beta float64, seed int64) (seriesA, seriesB []float64) {
	rng := rand.New(rand.NewSource(seed))
	seriesA = make([]float64, n)
	seriesB = make([]float64, n)
	level := 100.0
	noise := 0.0
	for i := 0; i < n; i++ {
		level += rng.NormFloat64()
		noise = 0.2*noise + rng.NormFloat64()
		seriesB[i] = level
		seriesA[i] = alpha + beta*level + noise
	}
	return seriesA, seriesB
}

func TestFitOLS(t *testing.T) {
	t.Run("exact line", func(t *testing.T) {
		x := make([]float64, 10)
		y := make([]float64, 10)
		for i := range x {
			x[i] = float64(i + 1)
			y[i] = 3 + 2*x[i]
		}

		fit, err := FitOLS(y, x)
		require.NoError(t, err)

		assert.InDelta(t, 3.0, fit.Alpha, 1e-10)
		assert.InDelta(t, 2.0, fit.Beta, 1e-10)
		for _, r := range fit.Residuals {
			assert.InDelta(t, 0.0, r, 1e-10)
		}
	})

	t.Run("residual identity and zero mean", func(t *testing.T) {
		y := []float64{2.1, 3.9, 6.2, 7.8, 10.3, 11.7}
		x := []float64{1, 2, 3, 4, 5, 6}

		fit, err := FitOLS(y, x)
		require.NoError(t, err)
		require.Len(t, fit.Residuals, len(y))

		for i, r := range fit.Residuals {
			assert.InDelta(t, y[i], fit.Alpha+fit.Beta*x[i]+r, 1e-12)
		}
		assert.InDelta(t, 0.0, mean(fit.Residuals), 1e-12)
	})

	t.Run("constant regressor", func(t *testing.T) {
		_, err := FitOLS([]float64{1, 2, 3}, []float64{5, 5, 5})

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
	})

	t.Run("misaligned series", func(t *testing.T) {
		_, err := FitOLS([]float64{1, 2, 3}, []float64{1, 2})

		var validationErr *apierrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("non-finite value", func(t *testing.T) {
		_, err := FitOLS([]float64{1, math.Inf(1), 3}, []float64{1, 2, 3})

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
	})
}

func TestPearsonCorrelation(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		want float64
	}{
		{name: "perfect positive", x: []float64{1, 2, 3, 4}, y: []float64{2, 4, 6, 8}, want: 1},
		{name: "perfect negative", x: []float64{1, 2, 3, 4}, y: []float64{8, 6, 4, 2}, want: -1},
		{name: "partial", x: []float64{1, 2, 3}, y: []float64{1, 3, 2}, want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PearsonCorrelation(tt.x, tt.y), 1e-12)
		})
	}

	t.Run("constant series", func(t *testing.T) {
		assert.True(t, math.IsNaN(PearsonCorrelation([]float64{1, 1, 1}, []float64{1, 2, 3})))
	})
	t.Run("too short", func(t *testing.T) {
		assert.True(t, math.IsNaN(PearsonCorrelation([]float64{1}, []float64{1})))
	})
}

func TestHalfLife(t *testing.T) {
	t.Run("exact geometric decay", func(t *testing.T) {
		// e_t = 0.5*e_{t-1} exactly: lambda = 0.5, so the half-life is
		// one observation by definition.
		series := make([]float64, 12)
		series[0] = 64
		for i := 1; i < len(series); i++ {
			series[i] = series[i-1] * 0.5
		}

		halfLife := HalfLife(series)
		require.NotNil(t, halfLife)
		assert.InDelta(t, 1.0, *halfLife, 1e-9)
	})

	t.Run("expanding series has no half-life", func(t *testing.T) {
		series := make([]float64, 12)
		series[0] = 1
		for i := 1; i < len(series); i++ {
			series[i] = series[i-1] * 2
		}
		assert.Nil(t, HalfLife(series))
	})

	t.Run("oscillating explosive series has no half-life", func(t *testing.T) {
		series := make([]float64, 12)
		series[0] = 1
		for i := 1; i < len(series); i++ {
			series[i] = series[i-1] * -1.5
		}
		assert.Nil(t, HalfLife(series))
	})

	t.Run("all zeros", func(t *testing.T) {
		assert.Nil(t, HalfLife(make([]float64, 12)))
	})

	t.Run("too short", func(t *testing.T) {
		assert.Nil(t, HalfLife([]float64{1, 0.5}))
	})
}

func TestEngleGranger_CointegratedPair(t *testing.T) {
	const (
		alpha = 10.0
		beta  = 2.5
	)
	seriesA, seriesB := syntheticPair(300, alpha, beta, 42)

	result, err := EngleGranger(seriesA, seriesB, DefaultPValueThreshold)
	require.NoError(t, err)

	assert.Less(t, result.PValue, 0.01)
	assert.True(t, result.IsCointegrated)
	assert.InEpsilon(t, beta, result.HedgeRatio, 0.05)
	assert.Equal(t, 300, result.Observations)

	// The AR(1) noise has phi=0.2, so the spread reverts in well under a
	// handful of observations.
	require.NotNil(t, result.HalfLife)
	assert.Greater(t, *result.HalfLife, 0.0)
	assert.Less(t, *result.HalfLife, 2.0)

	// The spread keeps the intercept, so its mean sits near alpha.
	assert.InDelta(t, alpha, result.SpreadMean, 3.0)
	assert.Greater(t, result.SpreadStd, 0.0)

	// A and B share the same random-walk driver almost one-for-one.
	assert.Greater(t, result.Correlation, 0.95)

	require.Contains(t, result.CriticalValues, "1%")
	require.Contains(t, result.CriticalValues, "5%")
	require.Contains(t, result.CriticalValues, "10%")
	assert.Less(t, result.TestStatistic, result.CriticalValues["1%"])
}

func TestEngleGranger_DirectionDependence(t *testing.T) {
	seriesA, seriesB := syntheticPair(300, 10.0, 2.5, 42)

	forward, err := EngleGranger(seriesA, seriesB, DefaultPValueThreshold)
	require.NoError(t, err)
	reverse, err := EngleGranger(seriesB, seriesA, DefaultPValueThreshold)
	require.NoError(t, err)

	// Significance is symmetric in the pair order.
	assert.Less(t, forward.PValue, 0.01)
	assert.Less(t, reverse.PValue, 0.01)
	assert.True(t, forward.IsCointegrated)
	assert.True(t, reverse.IsCointegrated)

	// The hedge ratio is not: it comes from a directed regression, and
	// reversing the pair does not simply invert it.
	assert.InEpsilon(t, 2.5, forward.HedgeRatio, 0.05)
	assert.InEpsilon(t, 1/2.5, reverse.HedgeRatio, 0.05)
	assert.NotEqual(t, forward.HedgeRatio, 1/reverse.HedgeRatio)
}

func TestEngleGranger_NotCointegrated(t *testing.T) {
	// A drifting series regressed on stationary noise leaves trending
	// residuals: no mean reversion, no cointegration.
	rng := rand.New(rand.NewSource(3))
	n := 300
	seriesA := make([]float64, n)
	seriesB := make([]float64, n)
	for i := 0; i < n; i++ {
		seriesA[i] = 0.5*float64(i) + rng.NormFloat64()
		seriesB[i] = 50 + rng.NormFloat64()
	}

	result, err := EngleGranger(seriesA, seriesB, DefaultPValueThreshold)
	require.NoError(t, err)

	assert.False(t, result.IsCointegrated)
	assert.Greater(t, result.PValue, 0.10)
}

func TestEngleGranger_DefaultThreshold(t *testing.T) {
	seriesA, seriesB := syntheticPair(300, 10.0, 2.5, 42)

	result, err := EngleGranger(seriesA, seriesB, 0)
	require.NoError(t, err)
	assert.True(t, result.IsCointegrated, "non-positive threshold falls back to the default")
}

func TestEngleGranger_Errors(t *testing.T) {
	t.Run("insufficient observations", func(t *testing.T) {
		seriesA, seriesB := syntheticPair(MinObservations-1, 0, 1, 1)
		_, err := EngleGranger(seriesA, seriesB, DefaultPValueThreshold)

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "pair", insufficientErr.Entity)
		assert.Equal(t, MinObservations, insufficientErr.Required)
		assert.Equal(t, MinObservations-1, insufficientErr.Actual)
	})

	t.Run("misaligned series", func(t *testing.T) {
		seriesA, seriesB := syntheticPair(60, 0, 1, 1)
		_, err := EngleGranger(seriesA[:50], seriesB, DefaultPValueThreshold)

		var validationErr *apierrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("non-finite values", func(t *testing.T) {
		seriesA, seriesB := syntheticPair(60, 0, 1, 1)
		seriesA[30] = math.NaN()
		_, err := EngleGranger(seriesA, seriesB, DefaultPValueThreshold)

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
	})
}
