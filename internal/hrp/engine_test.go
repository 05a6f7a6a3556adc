package hrp

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "quantdesk/internal/errors"
)

func TestEngine_Analyze(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Analyze(context.Background(), blockCorrelation(), LinkageWard)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, LinkageWard, result.Linkage)
	assert.ElementsMatch(t, []string{"AAA", "BBB", "CCC", "DDD"}, result.OrderedTickers)
	assert.Len(t, result.Merges, 3)
	assert.Len(t, result.Heatmap, 16)
	assert.Len(t, result.LeafMap, 3)

	// Tree root covers the whole universe.
	require.NotNil(t, result.Tree)
	assert.ElementsMatch(t, []string{"AAA", "BBB", "CCC", "DDD"}, result.Tree.Leaves())

	// The ordering keeps the correlated blocks contiguous.
	pos := make(map[string]int, 4)
	for i, ticker := range result.OrderedTickers {
		pos[ticker] = i
	}
	assert.Equal(t, 1, abs(pos["AAA"]-pos["BBB"]), "AAA and BBB must be adjacent")
	assert.Equal(t, 1, abs(pos["CCC"]-pos["DDD"]), "CCC and DDD must be adjacent")
}

func TestEngine_Analyze_AllLinkages(t *testing.T) {
	engine := NewEngine(nil)
	corr := blockCorrelation()

	for _, method := range []Linkage{LinkageSingle, LinkageComplete, LinkageAverage, LinkageWard} {
		t.Run(method.String(), func(t *testing.T) {
			result, err := engine.Analyze(context.Background(), corr, method)
			require.NoError(t, err)
			assert.Len(t, result.OrderedTickers, 4)
			assert.Len(t, result.Merges, 3)
		})
	}
}

func TestEngine_Analyze_Validation(t *testing.T) {
	engine := NewEngine(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		corr     *CorrelationMatrix
		method   Linkage
		wantValidation bool // expect ValidationError specifically
	}{
		{
			name:     "nil matrix",
			corr:     nil,
			method:   LinkageWard,
			wantValidation: true,
		},
		{
			name: "single ticker",
			corr: &CorrelationMatrix{
				Tickers: []string{"AAA"},
				Values:  [][]float64{{1}},
			},
			method:   LinkageWard,
			wantValidation: true,
		},
		{
			name:     "unknown linkage",
			corr:     blockCorrelation(),
			method:   Linkage("median"),
			wantValidation: true,
		},
		{
			name: "matrix shape mismatch",
			corr: &CorrelationMatrix{
				Tickers: []string{"AAA", "BBB"},
				Values:  [][]float64{{1, 0.5}},
			},
			method:   LinkageWard,
			wantValidation: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Analyze(ctx, tt.corr, tt.method)
			require.Error(t, err)
			if tt.wantValidation {
				var valErr *apierrors.ValidationError
				assert.ErrorAs(t, err, &valErr)
			}
		})
	}
}

func TestEngine_Analyze_InsufficientData(t *testing.T) {
	engine := NewEngine(nil)

	corr := &CorrelationMatrix{
		Tickers: []string{"AAA", "BBB", "CCC"},
		Values: [][]float64{
			{1, 0.5, math.NaN()},
			{0.5, 1, 0.2},
			{math.NaN(), 0.2, 1},
		},
	}

	_, err := engine.Analyze(context.Background(), corr, LinkageWard)
	require.Error(t, err)

	var dataErr *apierrors.InsufficientDataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestEngine_Analyze_CancelledContext(t *testing.T) {
	engine := NewEngine(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, blockCorrelation(), LinkageWard)
	assert.ErrorIs(t, err, context.Canceled)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
