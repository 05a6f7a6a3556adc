package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"quantdesk/internal/infrastructure"
)

// checkTimeout bounds each dependency probe so a hung dependency cannot
// stall the whole readiness response.
const checkTimeout = 2 * time.Second

// CheckFunc probes one dependency; a nil return means ready.
type CheckFunc func(ctx context.Context) error

// HealthService reports process health and dependency readiness. Probes
// are registered by name at wiring time; liveness never touches them.
type HealthService struct {
	version   string
	startTime time.Time
	runtime   *infrastructure.RuntimeCollector
	checks    map[string]CheckFunc
	order     []string
	logger    *slog.Logger
}

// HealthStatus is the health endpoint response shape.
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth is one dependency's view in a health response.
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates the health service. collector may be nil; the
// runtime block then falls back to direct runtime package reads.
func NewHealthService(version string, collector *infrastructure.RuntimeCollector, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		runtime:   collector,
		checks:    make(map[string]CheckFunc),
		logger:    logger.With("service", "health"),
	}
}

// Register adds a named readiness probe. Re-registering a name replaces
// its probe; probes run in first-registration order.
func (hs *HealthService) Register(name string, check CheckFunc) {
	if _, exists := hs.checks[name]; !exists {
		hs.order = append(hs.order, name)
	}
	hs.checks[name] = check
}

// HealthCheck reports overall health: process runtime plus every
// registered probe. Any failing probe degrades the overall status.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime:   hs.runtimeInfo(ctx),
		Services:  make(map[string]ServiceHealth, len(hs.checks)),
	}

	for _, name := range hs.order {
		health := hs.runCheck(ctx, name)
		status.Services[name] = health
		if health.Status != "ready" {
			status.Status = "degraded"
		}
	}
	return status
}

// ReadinessCheck reports whether every registered dependency probe passes.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Services:  make(map[string]ServiceHealth, len(hs.checks)),
	}

	for _, name := range hs.order {
		health := hs.runCheck(ctx, name)
		status.Services[name] = health
		if health.Status != "ready" {
			status.Status = "not_ready"
		}
	}
	return status
}

// LivenessCheck reports that the process is serving. It never probes
// dependencies, so a broken provider cannot get the process restarted.
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC(),
		Version:   hs.version,
		Runtime:   hs.runtimeInfo(ctx),
	}
}

// Version reports build and process information.
func (hs *HealthService) Version() map[string]interface{} {
	return map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.UTC().Format(time.RFC3339),
		"current_time": time.Now().UTC().Format(time.RFC3339),
	}
}

func (hs *HealthService) runCheck(ctx context.Context, name string) ServiceHealth {
	check := hs.checks[name]
	if check == nil {
		return ServiceHealth{Status: "ready"}
	}

	cctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := check(cctx); err != nil {
		hs.logger.WarnContext(ctx, "readiness probe failed",
			"probe", name,
			"error", err,
		)
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) runtimeInfo(ctx context.Context) map[string]interface{} {
	info := map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hs.runtime != nil {
		stats := hs.runtime.Snapshot(ctx)
		info["goroutines"] = stats.Goroutines
		info["heap_alloc_bytes"] = stats.HeapAllocBytes
		info["sys_bytes"] = stats.SysBytes
		info["gc_count"] = stats.GCCount
	}
	return info
}
