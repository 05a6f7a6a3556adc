package statarb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quantdesk/internal/errors"
)

func TestComputeSpread_RollingZScore(t *testing.T) {
	seriesA := []float64{1, 2, 3, 6}
	seriesB := make([]float64, 4)

	series, err := ComputeSpread(seriesA, seriesB, 0, 3, 2.0, 0.5)
	require.NoError(t, err)
	require.Len(t, series.Points, 4)

	// Warmup: the first window-1 dates carry no z-score and no signal.
	assert.Nil(t, series.Points[0].ZScore)
	assert.Nil(t, series.Points[1].ZScore)
	assert.Equal(t, SignalNone, series.Points[0].Signal)
	assert.Equal(t, SignalNone, series.Points[1].Signal)

	// Window [1,2,3]: mean 2, sample std 1.
	require.NotNil(t, series.Points[2].ZScore)
	assert.InDelta(t, 1.0, *series.Points[2].ZScore, 1e-12)

	// Window [2,3,6]: mean 11/3, sample std sqrt(13/3).
	require.NotNil(t, series.Points[3].ZScore)
	assert.InDelta(t, 1.1208971, *series.Points[3].ZScore, 1e-6)

	assert.InDelta(t, 3.0, series.Stats.Mean, 1e-12)
	assert.InDelta(t, 2.1602469, series.Stats.Std, 1e-6)
	assert.InDelta(t, 1.0, series.Stats.Min, 1e-12)
	assert.InDelta(t, 6.0, series.Stats.Max, 1e-12)
}

func TestComputeSpread_HedgeRatioApplied(t *testing.T) {
	series, err := ComputeSpread([]float64{5, 5}, []float64{1, 2}, 2.0, 2, 2.0, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, series.Points[0].Spread, 1e-12)
	assert.InDelta(t, 1.0, series.Points[1].Spread, 1e-12)

	require.NotNil(t, series.Points[1].ZScore)
	assert.InDelta(t, -0.7071068, *series.Points[1].ZScore, 1e-6)
	assert.Equal(t, SignalNone, series.Points[1].Signal)
}

func TestComputeSpread_SignalSequence(t *testing.T) {
	// A flat spread with one upward spike: the spike date breaches the
	// entry threshold (short), the following dates sit back inside the
	// exit band while the spike is still inflating the rolling window,
	// and once it leaves the window the z-score is undefined again.
	seriesA := []float64{10, 10, 10, 10, 10, 14, 10, 10, 10, 10, 10, 10}
	seriesB := make([]float64, len(seriesA))

	series, err := ComputeSpread(seriesA, seriesB, 0, 6, 2.0, 0.5)
	require.NoError(t, err)
	require.Len(t, series.Points, 12)

	for i := 0; i < 5; i++ {
		assert.Equal(t, SignalNone, series.Points[i].Signal, "warmup date %d", i)
		assert.Nil(t, series.Points[i].ZScore, "warmup date %d", i)
	}

	require.NotNil(t, series.Points[5].ZScore)
	assert.InDelta(t, 2.0412415, *series.Points[5].ZScore, 1e-6)
	assert.Equal(t, SignalShort, series.Points[5].Signal)

	for i := 6; i <= 10; i++ {
		require.NotNil(t, series.Points[i].ZScore, "date %d", i)
		assert.InDelta(t, -0.4082483, *series.Points[i].ZScore, 1e-6)
		assert.Equal(t, SignalExit, series.Points[i].Signal, "date %d", i)
	}

	// The spike has left the window: flat data, undefined z-score.
	assert.Nil(t, series.Points[11].ZScore)
	assert.Equal(t, SignalNone, series.Points[11].Signal)

	// Short then exit, and never a long in between.
	for _, p := range series.Points {
		assert.NotEqual(t, SignalLong, p.Signal)
	}

	counts := series.SignalCounts()
	assert.Equal(t, 0, counts[SignalLong])
	assert.Equal(t, 1, counts[SignalShort])
	assert.Equal(t, 5, counts[SignalExit])
	assert.Equal(t, 6, counts[SignalNone])
}

func TestComputeSpread_ConstantSeries(t *testing.T) {
	seriesA := []float64{4, 4, 4, 4, 4, 4}
	seriesB := make([]float64, len(seriesA))

	series, err := ComputeSpread(seriesA, seriesB, 0, 3, 2.0, 0.5)
	require.NoError(t, err)

	for i, p := range series.Points {
		assert.Nil(t, p.ZScore, "date %d", i)
		assert.Equal(t, SignalNone, p.Signal, "date %d", i)
	}
	assert.Equal(t, 0.0, series.Stats.Std)
}

func TestComputeSpread_SeriesShorterThanWindow(t *testing.T) {
	series, err := ComputeSpread([]float64{1, 2, 3}, []float64{0, 0, 0}, 0, 10, 2.0, 0.5)
	require.NoError(t, err)

	for _, p := range series.Points {
		assert.Nil(t, p.ZScore)
		assert.Equal(t, SignalNone, p.Signal)
	}
}

func TestComputeSpread_Validation(t *testing.T) {
	valid := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name       string
		a          []float64
		b          []float64
		hedgeRatio float64
		window     int
		entry      float64
		exit       float64
	}{
		{name: "misaligned series", a: valid, b: valid[:3], hedgeRatio: 1, window: 3, entry: 2, exit: 0.5},
		{name: "window too small", a: valid, b: valid, hedgeRatio: 1, window: 1, entry: 2, exit: 0.5},
		{name: "non-finite hedge ratio", a: valid, b: valid, hedgeRatio: math.NaN(), window: 3, entry: 2, exit: 0.5},
		{name: "negative entry threshold", a: valid, b: valid, hedgeRatio: 1, window: 3, entry: -1, exit: 0.5},
		{name: "negative exit threshold", a: valid, b: valid, hedgeRatio: 1, window: 3, entry: 2, exit: -0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSpread(tt.a, tt.b, tt.hedgeRatio, tt.window, tt.entry, tt.exit)

			var validationErr *apierrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}

	t.Run("empty series", func(t *testing.T) {
		_, err := ComputeSpread(nil, nil, 1, 3, 2, 0.5)

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
	})

	t.Run("non-finite series value", func(t *testing.T) {
		a := []float64{1, 2, math.Inf(-1), 4, 5}
		_, err := ComputeSpread(a, valid, 1, 3, 2, 0.5)

		var insufficientErr *apierrors.InsufficientDataError
		require.ErrorAs(t, err, &insufficientErr)
	})
}

func TestClassifySignal(t *testing.T) {
	tests := []struct {
		name  string
		z     float64
		entry float64
		exit  float64
		want  Signal
	}{
		{name: "at entry shorts", z: 2.0, entry: 2.0, exit: 0.5, want: SignalShort},
		{name: "above entry shorts", z: 3.7, entry: 2.0, exit: 0.5, want: SignalShort},
		{name: "at negative entry longs", z: -2.0, entry: 2.0, exit: 0.5, want: SignalLong},
		{name: "below negative entry longs", z: -2.9, entry: 2.0, exit: 0.5, want: SignalLong},
		{name: "inside exit band exits", z: 0.3, entry: 2.0, exit: 0.5, want: SignalExit},
		{name: "at exit band edge exits", z: -0.5, entry: 2.0, exit: 0.5, want: SignalExit},
		{name: "between bands does nothing", z: 1.2, entry: 2.0, exit: 0.5, want: SignalNone},
		{name: "between negative bands does nothing", z: -1.2, entry: 2.0, exit: 0.5, want: SignalNone},
		{name: "zero exit threshold needs exact zero", z: 0.0, entry: 2.0, exit: 0.0, want: SignalExit},
		{name: "zero entry takes precedence over exit", z: 0.0, entry: 0.0, exit: 0.5, want: SignalShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifySignal(tt.z, tt.entry, tt.exit))
		})
	}
}
