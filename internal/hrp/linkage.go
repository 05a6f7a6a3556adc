package hrp

import (
	"fmt"
	"math"

	apierrors "quantdesk/internal/errors"
)

// Cluster runs agglomerative hierarchical clustering over a distance matrix
// and returns the n-1 merge operations in execution order.
//
// Parameters:
//   - dist: square symmetric distance matrix with zero diagonal
//   - method: linkage criterion controlling inter-cluster distances
//
// Returns the merge sequence where original items carry ids 0..n-1 and the
// i-th merge creates cluster id n+i (the dendrogram convention), or an
// error when the matrix is degenerate.
//
// The merge loop keeps a working copy of the distance matrix and, after
// each merge, rewrites the merged cluster's distances to every surviving
// cluster with the Lance-Williams recurrence for the selected criterion.
// All four supported criteria are monotone, so merge heights never decrease
// from one step to the next. Ties on the minimum distance resolve to the
// lowest slot pair, which makes the output deterministic for a given input.
//
// Complexity is O(n^3) time and O(n^2) space; universes here are capped at
// MaxTickers, where the cubic scan is far cheaper than maintaining the
// priority queues of the sophisticated variants.
//
// Reference: Müllner (2011), "Modern hierarchical, agglomerative clustering
// algorithms", section 2 (the "primitive" algorithm).
func Cluster(dist [][]float64, method Linkage) ([]Merge, error) {
	if !method.IsValid() {
		return nil, apierrors.NewValidation("linkage_method",
			"must be one of single, complete, average, ward", string(method))
	}

	n := len(dist)
	if n < MinTickers {
		return nil, apierrors.NewInsufficientObservations("distance matrix", MinTickers, n)
	}
	for i, row := range dist {
		if len(row) != n {
			return nil, apierrors.NewValidation("distance_matrix",
				fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), n), nil)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, apierrors.NewInsufficientData("distance matrix",
					fmt.Sprintf("non-finite distance at (%d, %d)", i, j))
			}
		}
	}

	// Working state indexed by slot: a slot holds the current cluster that
	// occupies row/column position i of the working matrix.
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		copy(d[i], dist[i])
	}
	id := make([]int, n)
	size := make([]int, n)
	active := make([]bool, n)
	for i := 0; i < n; i++ {
		id[i] = i
		size[i] = 1
		active[i] = true
	}

	merges := make([]Merge, 0, n-1)
	for step := 0; step < n-1; step++ {
		// Find the closest active pair.
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if d[i][j] < best {
					best = d[i][j]
					bi, bj = i, j
				}
			}
		}

		a, b := id[bi], id[bj]
		if a > b {
			a, b = b, a
		}
		mergedSize := size[bi] + size[bj]
		merges = append(merges, Merge{A: a, B: b, Height: best, Size: mergedSize})

		// Lance-Williams update: the merged cluster takes over slot bi.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			nd := updateDistance(method, d[bi][k], d[bj][k], best, size[bi], size[bj], size[k])
			d[bi][k] = nd
			d[k][bi] = nd
		}

		id[bi] = n + step
		size[bi] = mergedSize
		active[bj] = false
	}

	return merges, nil
}

// updateDistance computes the distance between the cluster formed by
// merging i and j (sizes si, sj, at distance dij) and an untouched cluster
// k (size sk, at distances dik and djk from i and j).
func updateDistance(method Linkage, dik, djk, dij float64, si, sj, sk int) float64 {
	switch method {
	case LinkageSingle:
		return math.Min(dik, djk)
	case LinkageComplete:
		return math.Max(dik, djk)
	case LinkageAverage:
		return (float64(si)*dik + float64(sj)*djk) / float64(si+sj)
	case LinkageWard:
		// Ward on raw distances: the recurrence operates on squared
		// distances, so square, combine, and take the root. The combination
		// can dip a hair below zero in floating point; clamp before sqrt.
		total := float64(si + sj + sk)
		v := (float64(si+sk)*dik*dik + float64(sj+sk)*djk*djk - float64(sk)*dij*dij) / total
		if v < 0 {
			v = 0
		}
		return math.Sqrt(v)
	default:
		// Unreachable: method validated by Cluster.
		return math.NaN()
	}
}
