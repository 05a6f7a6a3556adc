package hrp

import (
	"fmt"
	"math"

	apierrors "quantdesk/internal/errors"
)

// DistanceFromCorrelation converts a correlation matrix into the distance
// matrix used for clustering.
//
// Distance formula: d_ij = sqrt(0.5 * (1 - rho_ij))
//
// The transform maps correlation 1 to distance 0 and correlation -1 to
// distance 1, so strongly co-moving assets cluster first. Correlations are
// clamped to [-1, 1] before the transform to absorb floating-point drift
// from upstream estimation; the diagonal is forced to exactly zero.
//
// Returns an InsufficientDataError when the matrix is smaller than 2x2 or
// contains a non-finite entry. NaN correlations arise from constant price
// series (zero variance) and cannot be clustered; a correlation of exactly
// +1 yielding distance 0 is valid.
func DistanceFromCorrelation(corr *CorrelationMatrix) ([][]float64, error) {
	if err := corr.Validate(); err != nil {
		return nil, err
	}
	n := corr.Dim()
	if n < MinTickers {
		return nil, apierrors.NewInsufficientObservations("correlation matrix", MinTickers, n)
	}

	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho := corr.Values[i][j]
			if math.IsNaN(rho) || math.IsInf(rho, 0) {
				return nil, apierrors.NewInsufficientData("correlation matrix",
					fmt.Sprintf("non-finite correlation between %s and %s (constant price series?)",
						corr.Tickers[i], corr.Tickers[j]))
			}
			rho = math.Max(-1.0, math.Min(1.0, rho))
			d := math.Sqrt(math.Max(0, 0.5*(1.0-rho)))
			dist[i][j] = d
			dist[j][i] = d
		}
	}

	return dist, nil
}
