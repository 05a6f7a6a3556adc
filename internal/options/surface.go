package options

import (
	"math"
	"sort"
)

// Moneyness cutoffs for the out-of-the-money populations feeding the skew.
const (
	otmPutMoneyness  = 0.95
	otmCallMoneyness = 1.05
)

// computeMetrics aggregates per-side solve counts, at-the-money levels,
// put-call skew and volatility ranges over a solved chain. Unsolved
// contracts count toward the side totals but contribute to no statistic.
//
// The at-the-money contract per side is the solved contract whose moneyness
// is closest to 1.0; ties keep the earliest contract in chain order. The
// skew is the mean out-of-the-money put volatility minus the mean
// out-of-the-money call volatility and requires solved contracts on both
// wings.
func computeMetrics(contracts []Contract) SurfaceMetrics {
	var metrics SurfaceMetrics

	seen := make(map[string]struct{})
	var callIVs, putIVs, otmCallIVs, otmPutIVs []float64
	bestCallDist := math.Inf(1)
	bestPutDist := math.Inf(1)

	for i := range contracts {
		c := &contracts[i]
		if _, ok := seen[c.Expiration]; !ok && c.Expiration != "" {
			seen[c.Expiration] = struct{}{}
			metrics.ExpirationDates = append(metrics.ExpirationDates, c.Expiration)
		}

		switch c.Type {
		case Call:
			metrics.TotalCallContracts++
			if c.ImpliedVolatility == nil {
				continue
			}
			iv := *c.ImpliedVolatility
			metrics.SuccessfulCallIVs++
			callIVs = append(callIVs, iv)
			if dist := math.Abs(c.Moneyness - 1); dist < bestCallDist {
				bestCallDist = dist
				metrics.ATMCallIV = floatPtr(iv)
			}
			if c.Moneyness > otmCallMoneyness {
				otmCallIVs = append(otmCallIVs, iv)
			}
		case Put:
			metrics.TotalPutContracts++
			if c.ImpliedVolatility == nil {
				continue
			}
			iv := *c.ImpliedVolatility
			metrics.SuccessfulPutIVs++
			putIVs = append(putIVs, iv)
			if dist := math.Abs(c.Moneyness - 1); dist < bestPutDist {
				bestPutDist = dist
				metrics.ATMPutIV = floatPtr(iv)
			}
			if c.Moneyness < otmPutMoneyness {
				otmPutIVs = append(otmPutIVs, iv)
			}
		}
	}
	sort.Strings(metrics.ExpirationDates)

	switch {
	case metrics.ATMCallIV != nil && metrics.ATMPutIV != nil:
		metrics.ATMIVAvg = floatPtr((*metrics.ATMCallIV + *metrics.ATMPutIV) / 2)
	case metrics.ATMCallIV != nil:
		metrics.ATMIVAvg = floatPtr(*metrics.ATMCallIV)
	case metrics.ATMPutIV != nil:
		metrics.ATMIVAvg = floatPtr(*metrics.ATMPutIV)
	}

	if len(otmPutIVs) > 0 && len(otmCallIVs) > 0 {
		metrics.PutCallSkew = floatPtr(mean(otmPutIVs) - mean(otmCallIVs))
	}

	metrics.IVRangeCalls = ivRange(callIVs)
	metrics.IVRangePuts = ivRange(putIVs)
	return metrics
}

// ivRange summarises one side's solved volatilities. Returns nil when
// nothing solved; a single solve reports zero dispersion.
func ivRange(ivs []float64) *IVRange {
	if len(ivs) == 0 {
		return nil
	}
	r := IVRange{Min: ivs[0], Max: ivs[0], Mean: mean(ivs), Std: sampleStd(ivs)}
	for _, v := range ivs[1:] {
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
	}
	return &r
}

func floatPtr(v float64) *float64 {
	return &v
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation. Fewer than two points carry no
// dispersion and report zero.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
