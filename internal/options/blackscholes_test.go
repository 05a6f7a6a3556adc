package options

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quantdesk/internal/errors"
)

func TestPrice_KnownValues(t *testing.T) {
	t.Run("at the money call", func(t *testing.T) {
		price, err := Price(100, 100, 1.0, 0.05, 0, 0.20, Call)
		require.NoError(t, err)
		assert.InDelta(t, 10.4506, price, 1e-3)
	})

	t.Run("at the money put", func(t *testing.T) {
		price, err := Price(100, 100, 1.0, 0.05, 0, 0.20, Put)
		require.NoError(t, err)
		assert.InDelta(t, 5.5735, price, 1e-3)
	})

	t.Run("call with dividend yield", func(t *testing.T) {
		price, err := Price(100, 100, 1.0, 0.05, 0.03, 0.20, Call)
		require.NoError(t, err)
		assert.InDelta(t, 8.6525, price, 1e-3)
	})

	t.Run("put with dividend yield", func(t *testing.T) {
		price, err := Price(100, 100, 1.0, 0.05, 0.03, 0.20, Put)
		require.NoError(t, err)
		assert.InDelta(t, 6.7309, price, 1e-3)
	})

	t.Run("deep in the money call approaches discounted forward", func(t *testing.T) {
		price, err := Price(100, 50, 0.25, 0.05, 0, 0.20, Call)
		require.NoError(t, err)
		assert.InDelta(t, 50.6211, price, 1e-3)
	})
}

func TestPrice_PutCallParity(t *testing.T) {
	cases := []struct {
		name   string
		spot   float64
		strike float64
		tte    float64
		rate   float64
		yield  float64
		sigma  float64
	}{
		{"at the money", 100, 100, 1.0, 0.05, 0, 0.20},
		{"in the money call", 120, 100, 0.5, 0.03, 0.01, 0.35},
		{"out of the money call", 80, 100, 2.0, 0.01, 0.02, 0.15},
		{"short dated", 50, 55, 0.02, 0.045, 0, 0.60},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call, err := Price(tc.spot, tc.strike, tc.tte, tc.rate, tc.yield, tc.sigma, Call)
			require.NoError(t, err)
			put, err := Price(tc.spot, tc.strike, tc.tte, tc.rate, tc.yield, tc.sigma, Put)
			require.NoError(t, err)

			forward := tc.spot*math.Exp(-tc.yield*tc.tte) - tc.strike*math.Exp(-tc.rate*tc.tte)
			assert.InDelta(t, forward, call-put, 1e-9)
		})
	}
}

func TestPrice_MonotoneInVolatility(t *testing.T) {
	var prev float64
	for i, sigma := range []float64{0.05, 0.10, 0.20, 0.40, 0.80, 1.60} {
		price, err := Price(100, 105, 0.75, 0.045, 0.01, sigma, Call)
		require.NoError(t, err)
		if i > 0 {
			assert.Greater(t, price, prev, "price must increase with volatility")
		}
		prev = price
	}
}

func TestPrice_DeepOutOfTheMoneyFloorsAtZero(t *testing.T) {
	price, err := Price(100, 300, 0.01, 0.045, 0, 0.05, Call)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, price, 0.0)
	assert.Less(t, price, 1e-12)
}

func TestPrice_InvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		spot   float64
		strike float64
		tte    float64
		rate   float64
		yield  float64
		sigma  float64
	}{
		{"zero spot", 0, 100, 1, 0.05, 0, 0.2},
		{"negative spot", -5, 100, 1, 0.05, 0, 0.2},
		{"nan spot", math.NaN(), 100, 1, 0.05, 0, 0.2},
		{"zero strike", 100, 0, 1, 0.05, 0, 0.2},
		{"zero time to expiry", 100, 100, 0, 0.05, 0, 0.2},
		{"negative time to expiry", 100, 100, -0.5, 0.05, 0, 0.2},
		{"infinite rate", 100, 100, 1, math.Inf(1), 0, 0.2},
		{"nan dividend yield", 100, 100, 1, 0.05, math.NaN(), 0.2},
		{"zero volatility", 100, 100, 1, 0.05, 0, 0},
		{"negative volatility", 100, 100, 1, 0.05, 0, -0.2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Price(tc.spot, tc.strike, tc.tte, tc.rate, tc.yield, tc.sigma, Call)
			var invalidErr *apierrors.InvalidParameterError
			require.ErrorAs(t, err, &invalidErr)
		})
	}

	t.Run("unknown option type", func(t *testing.T) {
		_, err := Price(100, 100, 1, 0.05, 0, 0.2, OptionType("straddle"))
		var validationErr *apierrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
	})
}

func TestVega_KnownValue(t *testing.T) {
	vega, err := Vega(100, 100, 1.0, 0.05, 0, 0.20)
	require.NoError(t, err)
	assert.InDelta(t, 37.524, vega, 1e-2)
}

func TestVega_MatchesFiniteDifference(t *testing.T) {
	const h = 1e-5
	for _, typ := range []OptionType{Call, Put} {
		up, err := Price(100, 95, 0.8, 0.03, 0.01, 0.30+h, typ)
		require.NoError(t, err)
		down, err := Price(100, 95, 0.8, 0.03, 0.01, 0.30-h, typ)
		require.NoError(t, err)

		vega, err := Vega(100, 95, 0.8, 0.03, 0.01, 0.30)
		require.NoError(t, err)
		assert.InDelta(t, (up-down)/(2*h), vega, 1e-4)
	}
}

func TestVega_InvalidInputs(t *testing.T) {
	_, err := Vega(100, 100, 0, 0.05, 0, 0.2)
	var invalidErr *apierrors.InvalidParameterError
	require.ErrorAs(t, err, &invalidErr)

	_, err = Vega(100, 100, 1, 0.05, 0, -0.1)
	require.ErrorAs(t, err, &invalidErr)
}
