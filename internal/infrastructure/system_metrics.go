package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics publishes Go runtime health as observable instruments.
// Values are read at scrape time through a meter callback, so no
// collection goroutine runs and an unscraped process pays nothing.
type RuntimeMetrics struct {
	registration metric.Registration
}

// StartRuntimeMetrics registers the runtime instruments on the meter.
// Stop the returned handle when the run finishes.
func StartRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	goroutines, err := meter.Int64ObservableGauge(
		"system_goroutines",
		metric.WithDescription("Goroutines currently alive"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_goroutines: %w", err)
	}

	heapInUse, err := meter.Int64ObservableGauge(
		"system_memory_usage_bytes",
		metric.WithDescription("Heap bytes currently allocated"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_memory_usage_bytes: %w", err)
	}

	totalAlloc, err := meter.Int64ObservableCounter(
		"system_memory_allocated_bytes",
		metric.WithDescription("Cumulative bytes allocated by the runtime"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_memory_allocated_bytes: %w", err)
	}

	sysMem, err := meter.Int64ObservableGauge(
		"system_memory_system_bytes",
		metric.WithDescription("Bytes requested from the operating system"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_memory_system_bytes: %w", err)
	}

	gcPauseTotal, err := meter.Float64ObservableCounter(
		"system_gc_pause_seconds_total",
		metric.WithDescription("Cumulative stop the world pause time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_gc_pause_seconds_total: %w", err)
	}

	uptime, err := meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("system_process_uptime_seconds: %w", err)
	}

	startTime := time.Now()
	registration, err := meter.RegisterCallback(
		func(_ context.Context, o metric.Observer) error {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)

			o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
			o.ObserveInt64(heapInUse, int64(ms.Alloc))
			o.ObserveInt64(totalAlloc, int64(ms.TotalAlloc))
			o.ObserveInt64(sysMem, int64(ms.Sys))
			o.ObserveFloat64(gcPauseTotal, time.Duration(ms.PauseTotalNs).Seconds())
			o.ObserveFloat64(uptime, time.Since(startTime).Seconds())
			return nil
		},
		goroutines, heapInUse, totalAlloc, sysMem, gcPauseTotal, uptime,
	)
	if err != nil {
		return nil, fmt.Errorf("registering runtime callback: %w", err)
	}

	return &RuntimeMetrics{registration: registration}, nil
}

// Stop unregisters the runtime instruments.
func (r *RuntimeMetrics) Stop() error {
	return r.registration.Unregister()
}
