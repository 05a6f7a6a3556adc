package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats holds a point-in-time snapshot of Go runtime health,
// surfaced by the health endpoint and recorded as gauges.
type RuntimeStats struct {
	Goroutines     int           `json:"goroutines"`
	HeapAllocBytes uint64        `json:"heap_alloc_bytes"`
	SysBytes       uint64        `json:"sys_bytes"`
	GCCount        uint32        `json:"gc_count"`
	LastGCPause    time.Duration `json:"last_gc_pause_ns"`
	Uptime         time.Duration `json:"uptime_ns"`
}

// RuntimeCollector periodically records Go runtime metrics.
type RuntimeCollector struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	sysBytes   metric.Int64Gauge
	gcCount    metric.Int64Counter
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge

	startTime time.Time
	interval  time.Duration
	lastGC    uint32
	stopCh    chan struct{}
}

// NewRuntimeCollector creates a runtime metrics collector on the given
// meter. interval controls how often Start samples the runtime.
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	goroutines, err := meter.Int64Gauge(
		"system_goroutines",
		metric.WithDescription("Number of active goroutines"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	heapAlloc, err := meter.Int64Gauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap memory in use in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	sysBytes, err := meter.Int64Gauge(
		"system_memory_system_bytes",
		metric.WithDescription("Memory obtained from the OS in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	gcCount, err := meter.Int64Counter(
		"system_gc_count_total",
		metric.WithDescription("Total number of garbage collections"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	gcPause, err := meter.Float64Histogram(
		"system_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	uptime, err := meter.Float64Gauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	return &RuntimeCollector{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		sysBytes:   sysBytes,
		gcCount:    gcCount,
		gcPause:    gcPause,
		uptime:     uptime,
		startTime:  time.Now(),
		interval:   interval,
		stopCh:     make(chan struct{}),
	}, nil
}

// Snapshot samples the runtime, records all gauges, and returns the stats.
func (c *RuntimeCollector) Snapshot(ctx context.Context) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: memStats.Alloc,
		SysBytes:       memStats.Sys,
		GCCount:        memStats.NumGC,
		LastGCPause:    time.Duration(memStats.PauseNs[(memStats.NumGC+255)%256]),
		Uptime:         time.Since(c.startTime),
	}

	c.goroutines.Record(ctx, int64(stats.Goroutines))
	c.heapAlloc.Record(ctx, int64(stats.HeapAllocBytes))
	c.sysBytes.Record(ctx, int64(stats.SysBytes))
	c.uptime.Record(ctx, stats.Uptime.Seconds())

	// Count only collections since the previous snapshot.
	if delta := stats.GCCount - c.lastGC; delta > 0 {
		c.gcCount.Add(ctx, int64(delta))
		if stats.LastGCPause > 0 {
			c.gcPause.Record(ctx, stats.LastGCPause.Seconds())
		}
	}
	c.lastGC = stats.GCCount

	return stats
}

// Start samples the runtime every interval until Stop is called or the
// context is cancelled.
func (c *RuntimeCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Snapshot(ctx)

	for {
		select {
		case <-ticker.C:
			c.Snapshot(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the collection loop.
func (c *RuntimeCollector) Stop() {
	close(c.stopCh)
}
