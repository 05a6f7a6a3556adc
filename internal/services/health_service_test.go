package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"quantdesk/internal/infrastructure"
)

func TestHealthService_AllReady(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())
	svc.Register("cache", func(ctx context.Context) error { return nil })
	svc.Register("provider", func(ctx context.Context) error { return nil })

	health := svc.HealthCheck(context.Background())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "1.2.3", health.Version)
	assert.Len(t, health.Services, 2)
	assert.Contains(t, health.Runtime, "uptime")
	assert.Contains(t, health.Runtime, "go_version")

	ready := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "ready", ready.Services["cache"].Status)
	assert.Equal(t, "ready", ready.Services["provider"].Status)
}

func TestHealthService_FailingProbe(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())
	svc.Register("cache", func(ctx context.Context) error { return nil })
	svc.Register("provider", func(ctx context.Context) error {
		return errors.New("circuit breaker open")
	})

	ready := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", ready.Status)
	assert.Equal(t, "ready", ready.Services["cache"].Status)
	assert.Equal(t, "not_ready", ready.Services["provider"].Status)
	assert.Contains(t, ready.Services["provider"].Message, "circuit breaker")

	health := svc.HealthCheck(context.Background())
	assert.Equal(t, "degraded", health.Status)
}

func TestHealthService_ProbesGetDeadline(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())

	var sawDeadline bool
	svc.Register("cache", func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	})

	svc.ReadinessCheck(context.Background())
	assert.True(t, sawDeadline, "probe context should carry a deadline")
}

func TestHealthService_ReregisterReplacesProbe(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())
	svc.Register("cache", func(ctx context.Context) error { return errors.New("down") })
	svc.Register("cache", func(ctx context.Context) error { return nil })

	ready := svc.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", ready.Status)
	assert.Len(t, ready.Services, 1)
}

func TestHealthService_LivenessIgnoresProbes(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())
	svc.Register("provider", func(ctx context.Context) error {
		return errors.New("down")
	})

	live := svc.LivenessCheck(context.Background())
	assert.Equal(t, "alive", live.Status)
	assert.Empty(t, live.Services)
	assert.Contains(t, live.Runtime, "goroutines")
}

func TestHealthService_RuntimeCollectorSnapshot(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	collector, err := infrastructure.NewRuntimeCollector(mp.Meter("test"), time.Second)
	require.NoError(t, err)

	svc := NewHealthService("1.2.3", collector, testLogger())
	live := svc.LivenessCheck(context.Background())

	assert.Contains(t, live.Runtime, "heap_alloc_bytes")
	assert.Contains(t, live.Runtime, "sys_bytes")
	assert.Contains(t, live.Runtime, "gc_count")
}

func TestHealthService_Version(t *testing.T) {
	svc := NewHealthService("1.2.3", nil, testLogger())

	info := svc.Version()
	assert.Equal(t, "1.2.3", info["version"])
	assert.Contains(t, info, "go_version")
	assert.Contains(t, info, "uptime")
	assert.Contains(t, info, "start_time")
}
