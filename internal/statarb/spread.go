package statarb

import (
	apierrors "quantdesk/internal/errors"
)

// ComputeSpread builds the spread series for an aligned pair under a fixed
// hedge ratio, with a rolling z-score and a per-date trading signal.
//
// The raw spread is seriesA - hedgeRatio*seriesB. Each date's z-score
// normalizes the spread against the mean and sample standard deviation of
// the trailing `window` observations; the first window-1 dates have no
// z-score (nil, not zero) and never generate a signal, as does any date
// whose window has zero standard deviation.
//
// Signals classify each date independently of prior dates:
//
//	z >= entryThreshold   -> short (spread rich, sell it)
//	z <= -entryThreshold  -> long  (spread cheap, buy it)
//	|z| <= exitThreshold  -> exit  (spread back near its mean)
//	otherwise             -> none
//
// Callers interpret signal sequences to simulate positions; the classifier
// itself holds no position state.
func ComputeSpread(seriesA, seriesB []float64, hedgeRatio float64, window int, entryThreshold, exitThreshold float64) (*SpreadSeries, error) {
	if len(seriesA) != len(seriesB) {
		return nil, apierrors.NewValidation("series",
			"series must be aligned to the same length",
			map[string]int{"a": len(seriesA), "b": len(seriesB)})
	}
	n := len(seriesA)
	if n == 0 {
		return nil, apierrors.NewInsufficientData("spread", "series are empty")
	}
	if window < 2 {
		return nil, apierrors.NewValidation("window", "must be at least 2", window)
	}
	if !isFinite(hedgeRatio) {
		return nil, apierrors.NewValidation("hedge_ratio", "must be finite", hedgeRatio)
	}
	if entryThreshold < 0 {
		return nil, apierrors.NewValidation("entry_threshold", "must be non-negative", entryThreshold)
	}
	if exitThreshold < 0 {
		return nil, apierrors.NewValidation("exit_threshold", "must be non-negative", exitThreshold)
	}

	spread := make([]float64, n)
	for i := 0; i < n; i++ {
		if !isFinite(seriesA[i]) || !isFinite(seriesB[i]) {
			return nil, apierrors.NewInsufficientData("spread",
				"series contains non-finite values")
		}
		spread[i] = seriesA[i] - hedgeRatio*seriesB[i]
	}

	points := make([]SpreadPoint, n)
	for i := 0; i < n; i++ {
		points[i] = SpreadPoint{Spread: spread[i], Signal: SignalNone}

		if i < window-1 {
			continue // warmup: window not yet filled
		}

		trailing := spread[i-window+1 : i+1]
		sd := sampleStd(trailing)
		if sd == 0 {
			continue // flat window, z-score undefined
		}

		z := (spread[i] - mean(trailing)) / sd
		points[i].ZScore = &z
		points[i].Signal = classifySignal(z, entryThreshold, exitThreshold)
	}

	return &SpreadSeries{
		HedgeRatio:     hedgeRatio,
		Window:         window,
		EntryThreshold: entryThreshold,
		ExitThreshold:  exitThreshold,
		Points:         points,
		Stats: SpreadStats{
			Mean: mean(spread),
			Std:  sampleStd(spread),
			Min:  minOf(spread),
			Max:  maxOf(spread),
		},
	}, nil
}

// classifySignal maps one z-score onto a trading signal. Entry thresholds
// take precedence over the exit band, so entryThreshold = 0 classifies every
// scored date as an entry.
func classifySignal(z, entryThreshold, exitThreshold float64) Signal {
	switch {
	case z >= entryThreshold:
		return SignalShort
	case z <= -entryThreshold:
		return SignalLong
	case z <= exitThreshold && z >= -exitThreshold:
		return SignalExit
	default:
		return SignalNone
	}
}

// minOf returns the smallest value in the series, or 0 for an empty series.
func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// maxOf returns the largest value in the series, or 0 for an empty series.
func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
