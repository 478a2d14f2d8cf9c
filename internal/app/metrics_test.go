package app

import (
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics() returned nil")
	}

	snapshot := m.Snapshot()
	if snapshot.FlushCount != 0 {
		t.Errorf("expected 0 flush count, got %d", snapshot.FlushCount)
	}
	if snapshot.MinFlushNs != 0 {
		t.Errorf("expected 0 min flush time (sentinel handled), got %d", snapshot.MinFlushNs)
	}
}

func TestMetrics_RecordFlush(t *testing.T) {
	m := NewMetrics()

	m.RecordFlush(10 * time.Millisecond)
	m.RecordFlush(20 * time.Millisecond)
	m.RecordFlush(6 * time.Millisecond)

	snapshot := m.Snapshot()
	if snapshot.FlushCount != 3 {
		t.Errorf("expected 3 flushes, got %d", snapshot.FlushCount)
	}
	if snapshot.MinFlushNs != int64(6*time.Millisecond) {
		t.Errorf("expected min 6ms, got %d ns", snapshot.MinFlushNs)
	}
	if snapshot.MaxFlushNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", snapshot.MaxFlushNs)
	}
	if snapshot.AvgFlushNs != int64(12*time.Millisecond) {
		t.Errorf("expected avg 12ms, got %d ns", snapshot.AvgFlushNs)
	}
	if snapshot.LastFlushNs != int64(6*time.Millisecond) {
		t.Errorf("expected last 6ms, got %d ns", snapshot.LastFlushNs)
	}
}

func TestMetrics_Drags(t *testing.T) {
	m := NewMetrics()
	if m.Snapshot().AccelRate() != 0 {
		t.Error("no drags: rate should be 0")
	}

	m.RecordDrag(true)
	m.RecordDrag(true)
	m.RecordDrag(true)
	m.RecordDrag(false)

	s := m.Snapshot()
	if s.DragsAccelerated != 3 || s.DragsRedrawn != 1 {
		t.Errorf("drags = %d/%d, want 3/1", s.DragsAccelerated, s.DragsRedrawn)
	}
	if s.AccelRate() != 75 {
		t.Errorf("AccelRate() = %v, want 75", s.AccelRate())
	}
}

func TestMetrics_Events(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent(EventResize)
	m.RecordEvent(EventMouse)
	m.RecordReaped(2)

	s := m.Snapshot()
	if s.EventCount != 2 || s.ResizeCount != 1 || s.ReapedCount != 2 {
		t.Errorf("snapshot = %+v", s)
	}
}
