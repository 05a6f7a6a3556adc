package infrastructure

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application metric instruments. All record helpers
// are nil-receiver safe so components can run without telemetry wired.
type Metrics struct {
	// HTTP surface
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Analysis engines
	AnalysisRunsTotal metric.Int64Counter
	AnalysisDuration  metric.Float64Histogram
	PairsScannedTotal metric.Int64Counter
	IVSolvesTotal     metric.Int64Counter
}

// NewMetrics creates the application metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	analysisRunsTotal, err := meter.Int64Counter(
		"analysis_runs_total",
		metric.WithDescription("Total number of analysis runs by engine and status"),
	)
	if err != nil {
		return nil, err
	}

	analysisDuration, err := meter.Float64Histogram(
		"analysis_duration_seconds",
		metric.WithDescription("Analysis run duration in seconds by engine"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	pairsScannedTotal, err := meter.Int64Counter(
		"pairs_scanned_total",
		metric.WithDescription("Total number of pairs tested by the cointegration scan"),
	)
	if err != nil {
		return nil, err
	}

	ivSolvesTotal, err := meter.Int64Counter(
		"iv_solves_total",
		metric.WithDescription("Total number of implied volatility solve attempts by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		AnalysisRunsTotal:   analysisRunsTotal,
		AnalysisDuration:    analysisDuration,
		PairsScannedTotal:   pairsScannedTotal,
		IVSolvesTotal:       ivSolvesTotal,
	}, nil
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.String("status", strconv.Itoa(status)),
	}
	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// AddActiveRequests adjusts the in-flight request gauge by delta.
func (m *Metrics) AddActiveRequests(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.Add(ctx, delta)
}

// RecordAnalysis records one analysis run for the named engine.
func (m *Metrics) RecordAnalysis(ctx context.Context, engine string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.AnalysisRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("status", status),
	))
	m.AnalysisDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("engine", engine),
	))
}

// RecordPairsScanned adds the number of pairs actually tested by a scan.
func (m *Metrics) RecordPairsScanned(ctx context.Context, tested int) {
	if m == nil || tested <= 0 {
		return
	}
	m.PairsScannedTotal.Add(ctx, int64(tested))
}

// RecordIVSolves adds solver outcomes for one chain computation.
func (m *Metrics) RecordIVSolves(ctx context.Context, solved, failed int64) {
	if m == nil {
		return
	}
	if solved > 0 {
		m.IVSolvesTotal.Add(ctx, solved, metric.WithAttributes(attribute.String("outcome", "solved")))
	}
	if failed > 0 {
		m.IVSolvesTotal.Add(ctx, failed, metric.WithAttributes(attribute.String("outcome", "failed")))
	}
}
