package stablestore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    putCounter   prometheus.Counter
//	    putHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordPut(bytes int, duration time.Duration, err error) {
//	    p.putCounter.Inc()
//	    p.putHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordPut is called after each put operation.
	// bytes is the value size, err is nil if successful.
	RecordPut(bytes int, duration time.Duration, err error)

	// RecordGet is called after each get operation.
	// hit is true if a value was returned.
	RecordGet(hit bool, duration time.Duration)

	// RecordRemove is called after each remove operation.
	RecordRemove(removed bool, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(bool, time.Duration)       {}
func (NoopMetricsCollector) RecordRemove(bool, time.Duration)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount      atomic.Int64
	PutErrors     atomic.Int64
	PutBytes      atomic.Int64
	PutTotalNanos atomic.Int64
	GetCount      atomic.Int64
	GetHits       atomic.Int64
	GetTotalNanos atomic.Int64
	RemoveCount   atomic.Int64
	RemoveHits    atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(bytes int, duration time.Duration, err error) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PutErrors.Add(1)
		return
	}
	b.PutBytes.Add(int64(bytes))
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(hit bool, duration time.Duration) {
	b.GetCount.Add(1)
	b.GetTotalNanos.Add(duration.Nanoseconds())
	if hit {
		b.GetHits.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(removed bool, duration time.Duration) {
	b.RemoveCount.Add(1)
	if removed {
		b.RemoveHits.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		PutCount:    b.PutCount.Load(),
		PutErrors:   b.PutErrors.Load(),
		PutBytes:    b.PutBytes.Load(),
		PutAvgNanos: avg(b.PutTotalNanos.Load(), b.PutCount.Load()),
		GetCount:    b.GetCount.Load(),
		GetHits:     b.GetHits.Load(),
		GetAvgNanos: avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		RemoveCount: b.RemoveCount.Load(),
		RemoveHits:  b.RemoveHits.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	PutCount    int64
	PutErrors   int64
	PutBytes    int64
	PutAvgNanos int64
	GetCount    int64
	GetHits     int64
	GetAvgNanos int64
	RemoveCount int64
	RemoveHits  int64
}
