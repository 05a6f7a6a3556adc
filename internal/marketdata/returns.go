package marketdata

import (
	"math"
	"sort"

	apierrors "quantdesk/internal/errors"
)

// alignSeries intersects per-ticker bars onto one ascending date index.
// Ticker order follows the request order, restricted to fetched tickers;
// a date survives only when every fetched ticker has a finite close on it.
func alignSeries(requested []string, series map[string][]DailyBar) *PriceTable {
	tickers := make([]string, 0, len(series))
	for _, t := range requested {
		if _, ok := series[t]; ok {
			tickers = append(tickers, t)
		}
	}

	closesByTicker := make(map[string]map[string]float64, len(tickers))
	for _, t := range tickers {
		byDate := make(map[string]float64, len(series[t]))
		for _, bar := range series[t] {
			if !isFinite(bar.AdjClose) {
				continue
			}
			byDate[bar.Date] = bar.AdjClose
		}
		closesByTicker[t] = byDate
	}

	var dates []string
	if len(tickers) > 0 {
		for date := range closesByTicker[tickers[0]] {
			shared := true
			for _, t := range tickers[1:] {
				if _, ok := closesByTicker[t][date]; !ok {
					shared = false
					break
				}
			}
			if shared {
				dates = append(dates, date)
			}
		}
	}
	sort.Strings(dates)

	closes := make(map[string][]float64, len(tickers))
	for _, t := range tickers {
		column := make([]float64, len(dates))
		for i, date := range dates {
			column[i] = closesByTicker[t][date]
		}
		closes[t] = column
	}
	return &PriceTable{Dates: dates, Tickers: tickers, Closes: closes}
}

// DailyReturns converts aligned closes to simple daily returns
// (p_t/p_{t-1} - 1). Rows producing a non-finite return for any ticker are
// dropped so the result stays row-wise complete.
func DailyReturns(table *PriceTable) *ReturnsTable {
	if table == nil {
		return &ReturnsTable{Returns: map[string][]float64{}}
	}

	rt := &ReturnsTable{
		Tickers: append([]string(nil), table.Tickers...),
		Returns: make(map[string][]float64, len(table.Tickers)),
	}
	if len(table.Dates) < 2 {
		return rt
	}

	for i := 1; i < len(table.Dates); i++ {
		row := make([]float64, len(table.Tickers))
		valid := true
		for j, t := range table.Tickers {
			prev := table.Closes[t][i-1]
			r := table.Closes[t][i]/prev - 1
			if prev == 0 || !isFinite(r) {
				valid = false
				break
			}
			row[j] = r
		}
		if !valid {
			continue
		}
		rt.Dates = append(rt.Dates, table.Dates[i])
		for j, t := range table.Tickers {
			rt.Returns[t] = append(rt.Returns[t], row[j])
		}
	}
	return rt
}

// CorrelationMatrix computes the Pearson correlation of every ticker pair
// over the aligned return rows, in the table's ticker order. Fewer than two
// rows, or a constant return series (undefined correlation), fail with
// InsufficientDataError naming the offending pair.
func CorrelationMatrix(returns *ReturnsTable) ([][]float64, error) {
	if returns == nil || len(returns.Tickers) == 0 {
		return nil, apierrors.NewInsufficientData("returns", "no tickers to correlate")
	}
	if len(returns.Dates) < 2 {
		return nil, apierrors.NewInsufficientObservations("returns", 2, len(returns.Dates))
	}

	n := len(returns.Tickers)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		matrix[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho := pearson(returns.Returns[returns.Tickers[i]], returns.Returns[returns.Tickers[j]])
			if !isFinite(rho) {
				return nil, apierrors.NewInsufficientData(
					returns.Tickers[i]+"/"+returns.Tickers[j],
					"correlation undefined, constant return series",
				)
			}
			matrix[i][j] = rho
			matrix[j][i] = rho
		}
	}
	return matrix, nil
}

func pearson(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < 2 {
		return math.NaN()
	}

	meanX := meanOf(x)
	meanY := meanOf(y)
	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
