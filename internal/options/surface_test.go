package options

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solvedContract(typ OptionType, moneyness, iv float64, expiration string) Contract {
	return Contract{Type: typ, Moneyness: moneyness, ImpliedVolatility: &iv, Expiration: expiration}
}

func unsolvedContract(typ OptionType, moneyness float64, expiration string) Contract {
	return Contract{Type: typ, Moneyness: moneyness, Expiration: expiration}
}

func TestComputeMetrics_MixedChain(t *testing.T) {
	contracts := []Contract{
		solvedContract(Call, 0.90, 0.25, "2026-03-20"),
		solvedContract(Call, 1.00, 0.20, "2026-03-20"),
		solvedContract(Call, 1.10, 0.22, "2026-06-19"),
		unsolvedContract(Call, 1.06, "2026-06-19"),
		solvedContract(Put, 0.85, 0.30, "2026-03-20"),
		solvedContract(Put, 0.99, 0.21, "2026-01-16"),
		unsolvedContract(Put, 1.20, "2026-03-20"),
	}

	m := computeMetrics(contracts)

	assert.Equal(t, 4, m.TotalCallContracts)
	assert.Equal(t, 3, m.SuccessfulCallIVs)
	assert.Equal(t, 3, m.TotalPutContracts)
	assert.Equal(t, 2, m.SuccessfulPutIVs)

	require.NotNil(t, m.ATMCallIV)
	assert.InDelta(t, 0.20, *m.ATMCallIV, 1e-9)
	require.NotNil(t, m.ATMPutIV)
	assert.InDelta(t, 0.21, *m.ATMPutIV, 1e-9)
	require.NotNil(t, m.ATMIVAvg)
	assert.InDelta(t, 0.205, *m.ATMIVAvg, 1e-9)

	// OTM put wing is the 0.85 contract, OTM call wing the 1.10 contract;
	// the unsolved 1.06 call contributes nothing.
	require.NotNil(t, m.PutCallSkew)
	assert.InDelta(t, 0.08, *m.PutCallSkew, 1e-9)

	require.NotNil(t, m.IVRangeCalls)
	assert.InDelta(t, 0.20, m.IVRangeCalls.Min, 1e-9)
	assert.InDelta(t, 0.25, m.IVRangeCalls.Max, 1e-9)
	assert.InDelta(t, 0.2233333, m.IVRangeCalls.Mean, 1e-6)
	assert.InDelta(t, 0.0251661, m.IVRangeCalls.Std, 1e-6)

	require.NotNil(t, m.IVRangePuts)
	assert.InDelta(t, 0.21, m.IVRangePuts.Min, 1e-9)
	assert.InDelta(t, 0.30, m.IVRangePuts.Max, 1e-9)
	assert.InDelta(t, 0.255, m.IVRangePuts.Mean, 1e-9)
	assert.InDelta(t, 0.0636396, m.IVRangePuts.Std, 1e-6)

	assert.Equal(t, []string{"2026-01-16", "2026-03-20", "2026-06-19"}, m.ExpirationDates)
}

func TestComputeMetrics_ATMTieKeepsFirstInChainOrder(t *testing.T) {
	// Both contracts sit exactly 0.25 from the money; the earlier one wins.
	contracts := []Contract{
		solvedContract(Call, 0.75, 0.50, "2026-03-20"),
		solvedContract(Call, 1.25, 0.60, "2026-03-20"),
	}

	m := computeMetrics(contracts)

	require.NotNil(t, m.ATMCallIV)
	assert.Equal(t, 0.50, *m.ATMCallIV)
}

func TestComputeMetrics_OneSideEmpty(t *testing.T) {
	contracts := []Contract{
		solvedContract(Call, 1.00, 0.20, "2026-03-20"),
		solvedContract(Call, 1.10, 0.24, "2026-03-20"),
	}

	m := computeMetrics(contracts)

	assert.Equal(t, 2, m.TotalCallContracts)
	assert.Equal(t, 0, m.TotalPutContracts)
	assert.Nil(t, m.ATMPutIV)
	assert.Nil(t, m.PutCallSkew)
	assert.Nil(t, m.IVRangePuts)

	require.NotNil(t, m.ATMCallIV)
	require.NotNil(t, m.ATMIVAvg)
	assert.InDelta(t, 0.20, *m.ATMIVAvg, 1e-9)
	require.NotNil(t, m.IVRangeCalls)
}

func TestComputeMetrics_SkewNeedsBothWings(t *testing.T) {
	t.Run("no otm put", func(t *testing.T) {
		contracts := []Contract{
			solvedContract(Call, 1.10, 0.22, "2026-03-20"),
			solvedContract(Put, 0.99, 0.21, "2026-03-20"),
		}
		assert.Nil(t, computeMetrics(contracts).PutCallSkew)
	})

	t.Run("cutoffs are exclusive", func(t *testing.T) {
		contracts := []Contract{
			solvedContract(Call, 1.05, 0.22, "2026-03-20"),
			solvedContract(Put, 0.95, 0.30, "2026-03-20"),
		}
		assert.Nil(t, computeMetrics(contracts).PutCallSkew)
	})

	t.Run("unsolved wings do not count", func(t *testing.T) {
		contracts := []Contract{
			unsolvedContract(Call, 1.10, "2026-03-20"),
			solvedContract(Put, 0.85, 0.30, "2026-03-20"),
		}
		assert.Nil(t, computeMetrics(contracts).PutCallSkew)
	})
}

func TestComputeMetrics_SingleSolveReportsZeroDispersion(t *testing.T) {
	contracts := []Contract{
		solvedContract(Call, 1.00, 0.20, "2026-03-20"),
	}

	m := computeMetrics(contracts)

	require.NotNil(t, m.IVRangeCalls)
	assert.Equal(t, 0.20, m.IVRangeCalls.Min)
	assert.Equal(t, 0.20, m.IVRangeCalls.Max)
	assert.Equal(t, 0.20, m.IVRangeCalls.Mean)
	assert.Zero(t, m.IVRangeCalls.Std)
}

func TestComputeMetrics_EmptyChain(t *testing.T) {
	m := computeMetrics(nil)

	assert.Zero(t, m.TotalCallContracts)
	assert.Zero(t, m.TotalPutContracts)
	assert.Zero(t, m.SuccessfulCallIVs)
	assert.Zero(t, m.SuccessfulPutIVs)
	assert.Nil(t, m.ATMCallIV)
	assert.Nil(t, m.ATMPutIV)
	assert.Nil(t, m.ATMIVAvg)
	assert.Nil(t, m.PutCallSkew)
	assert.Nil(t, m.IVRangeCalls)
	assert.Nil(t, m.IVRangePuts)
	assert.Empty(t, m.ExpirationDates)
}
