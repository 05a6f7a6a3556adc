// Package hrp implements hierarchical clustering of assets by correlation
// structure, the analytical core of hierarchical risk parity portfolio
// construction.
//
// The engine takes a correlation matrix over a ticker universe and produces
// a binary cluster tree, a seriated (dendrogram-ordered) ticker sequence,
// a cluster-to-leaf map, and the reordered correlation matrix in long form
// for heatmap rendering.
//
// # Pipeline
//
//  1. Correlation to distance: d = sqrt(0.5 * (1 - rho)), giving a metric
//     in [0, 1] where perfectly correlated assets sit at distance zero.
//  2. Agglomerative clustering under a selectable linkage criterion
//     (single, complete, average, ward). Inter-cluster distances are
//     maintained with the Lance-Williams recurrence so all four criteria
//     share one merge loop.
//  3. Seriation: the merge sequence is expanded depth-first into a leaf
//     ordering that places early-merged assets adjacent to each other.
//  4. Tree construction: merges become a nested binary tree with tickers
//     at the leaves and merge heights at internal nodes, plus a map from
//     every internal cluster to the tickers beneath it.
//
// # Architecture
//
//   - types.go: linkage methods, matrices, merges, tree nodes, results
//   - distance.go: correlation-to-distance transform
//   - linkage.go: agglomerative merge loop and Lance-Williams updates
//   - seriation.go: dendrogram leaf ordering
//   - tree.go: nested tree and cluster-leaf map construction
//   - heatmap.go: seriated correlation cells
//   - engine.go: orchestration, validation and logging
//
// # Usage Example
//
//	engine := hrp.NewEngine(slog.Default())
//	result, err := engine.Analyze(ctx, corrMatrix, hrp.LinkageWard)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.OrderedTickers)
//
// The engine is a pure function over its inputs: it performs no I/O, keeps
// no state between calls, and is safe for concurrent use.
//
// References:
//   - López de Prado, M. (2016). "Building Diversified Portfolios that
//     Outperform Out-of-Sample". Journal of Portfolio Management.
//   - Müllner, D. (2011). "Modern hierarchical, agglomerative clustering
//     algorithms". arXiv:1109.2378.
package hrp
