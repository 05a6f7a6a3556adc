package hrp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apierrors "quantdesk/internal/errors"
)

// Engine orchestrates the clustering pipeline: distance transform, linkage,
// seriation, tree construction and heatmap flattening.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a clustering engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Analyze runs the full pipeline over a correlation matrix.
//
// Validation errors (too few tickers, unknown linkage, malformed matrix)
// surface as ValidationError; degenerate numeric content (non-finite
// correlations from constant series) surfaces as InsufficientDataError.
func (e *Engine) Analyze(ctx context.Context, corr *CorrelationMatrix, method Linkage) (*Result, error) {
	start := time.Now()

	if corr == nil {
		return nil, apierrors.NewValidation("correlation_matrix", "matrix is required", nil)
	}

	e.logger.InfoContext(ctx, "starting hrp analysis",
		"tickers", corr.Dim(),
		"linkage", method.String(),
	)

	if !method.IsValid() {
		return nil, apierrors.NewValidation("linkage_method",
			"must be one of single, complete, average, ward", string(method))
	}
	if err := corr.Validate(); err != nil {
		return nil, err
	}
	n := corr.Dim()
	if n < MinTickers {
		return nil, apierrors.NewValidation("tickers",
			fmt.Sprintf("at least %d tickers required", MinTickers), n)
	}
	if n > MaxTickers {
		return nil, apierrors.NewValidation("tickers",
			fmt.Sprintf("at most %d tickers supported", MaxTickers), n)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dist, err := DistanceFromCorrelation(corr)
	if err != nil {
		e.logger.WarnContext(ctx, "distance transform failed", "error", err)
		return nil, err
	}

	merges, err := Cluster(dist, method)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}

	orderIdx, err := LeafOrder(merges, n)
	if err != nil {
		return nil, fmt.Errorf("seriation: %w", err)
	}
	ordered := make([]string, n)
	for i, idx := range orderIdx {
		ordered[i] = corr.Tickers[idx]
	}

	tree, err := BuildTree(merges, corr.Tickers)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	cells, err := HeatmapCells(corr, ordered)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}

	result := &Result{
		Linkage:        method,
		OrderedTickers: ordered,
		Tree:           tree,
		LeafMap:        LeafMap(tree),
		Heatmap:        cells,
		Merges:         merges,
	}

	e.logger.InfoContext(ctx, "hrp analysis complete",
		"tickers", n,
		"merges", len(merges),
		"root_height", merges[len(merges)-1].Height,
		"duration", time.Since(start),
	)

	return result, nil
}
