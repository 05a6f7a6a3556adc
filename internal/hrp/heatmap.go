package hrp

import (
	"fmt"

	apierrors "quantdesk/internal/errors"
)

// HeatmapCells flattens the correlation matrix into long-form cells using
// the seriated ticker order for both axes, one cell per (row, column) pair
// including the diagonal. Row ticker is Y, column ticker is X, matching
// the rendering convention of the dashboard consumers.
func HeatmapCells(corr *CorrelationMatrix, order []string) ([]HeatmapCell, error) {
	if err := corr.Validate(); err != nil {
		return nil, err
	}
	if len(order) != corr.Dim() {
		return nil, apierrors.NewValidation("order",
			fmt.Sprintf("order has %d tickers, matrix has %d", len(order), corr.Dim()), nil)
	}

	index := make(map[string]int, corr.Dim())
	for i, t := range corr.Tickers {
		index[t] = i
	}

	cells := make([]HeatmapCell, 0, len(order)*len(order))
	for _, y := range order {
		yi, ok := index[y]
		if !ok {
			return nil, apierrors.NewValidation("order",
				fmt.Sprintf("ticker %s not present in matrix", y), y)
		}
		for _, x := range order {
			xi, ok := index[x]
			if !ok {
				return nil, apierrors.NewValidation("order",
					fmt.Sprintf("ticker %s not present in matrix", x), x)
			}
			cells = append(cells, HeatmapCell{X: x, Y: y, Value: corr.Values[yi][xi]})
		}
	}
	return cells, nil
}
