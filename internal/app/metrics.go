package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks loop and display counters. Counters are atomic so a
// status reader may snapshot them from another goroutine.
type Metrics struct {
	// Flush timing
	flushCount   atomic.Uint64
	flushTotalNs atomic.Int64
	flushMinNs   atomic.Int64
	flushMaxNs   atomic.Int64
	lastFlushNs  atomic.Int64

	// Drags
	dragsAccelerated atomic.Uint64
	dragsRedrawn     atomic.Uint64

	// Events
	eventCount  atomic.Uint64
	resizeCount atomic.Uint64
	reapedCount atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
	}
	// Initialize min to max int64 so first flush will be smaller
	m.flushMinNs.Store(1<<63 - 1)
	return m
}

// RecordFlush records the duration of one display flush.
func (m *Metrics) RecordFlush(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.flushCount.Add(1)
	m.flushTotalNs.Add(ns)
	m.lastFlushNs.Store(ns)

	for {
		old := m.flushMinNs.Load()
		if ns >= old || m.flushMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.flushMaxNs.Load()
		if ns <= old || m.flushMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordDrag records a drag, accelerated or redrawn.
func (m *Metrics) RecordDrag(accelerated bool) {
	if accelerated {
		m.dragsAccelerated.Add(1)
	} else {
		m.dragsRedrawn.Add(1)
	}
}

// RecordEvent records one consumed event.
func (m *Metrics) RecordEvent(kind EventKind) {
	m.eventCount.Add(1)
	if kind == EventResize {
		m.resizeCount.Add(1)
	}
}

// RecordReaped records reaped children.
func (m *Metrics) RecordReaped(n int) {
	m.reapedCount.Add(uint64(n))
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	flushCount := m.flushCount.Load()

	var avgFlushNs int64
	if flushCount > 0 {
		avgFlushNs = m.flushTotalNs.Load() / int64(flushCount)
	}

	minFlushNs := m.flushMinNs.Load()
	if minFlushNs == 1<<63-1 {
		minFlushNs = 0
	}

	return MetricsSnapshot{
		Uptime:           time.Since(m.startTime),
		FlushCount:       flushCount,
		AvgFlushNs:       avgFlushNs,
		MinFlushNs:       minFlushNs,
		MaxFlushNs:       m.flushMaxNs.Load(),
		LastFlushNs:      m.lastFlushNs.Load(),
		DragsAccelerated: m.dragsAccelerated.Load(),
		DragsRedrawn:     m.dragsRedrawn.Load(),
		EventCount:       m.eventCount.Load(),
		ResizeCount:      m.resizeCount.Load(),
		ReapedCount:      m.reapedCount.Load(),
	}
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime           time.Duration
	FlushCount       uint64
	AvgFlushNs       int64
	MinFlushNs       int64
	MaxFlushNs       int64
	LastFlushNs      int64
	DragsAccelerated uint64
	DragsRedrawn     uint64
	EventCount       uint64
	ResizeCount      uint64
	ReapedCount      uint64
}

// AccelRate returns the percentage of drags the backends performed.
func (s MetricsSnapshot) AccelRate() float64 {
	total := s.DragsAccelerated + s.DragsRedrawn
	if total == 0 {
		return 0
	}
	return float64(s.DragsAccelerated) / float64(total) * 100
}

// Metrics returns the application's metrics instance.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
