package mpinauth

import (
	"testing"
	"time"
)

func TestMetricsDisabledNoOps(t *testing.T) {
	m := NewMetrics(MetricsConfig{})
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricDecideLatency, time.Millisecond)

	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLockoutEntered)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	snap := m.Snapshot()
	if snap.Counters[MetricLoginSuccess] != 2 || snap.Counters[MetricLockoutEntered] != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap.Counters)
	}
	if _, ok := snap.Counters[MetricLoginFailure]; ok {
		t.Fatal("zero counters must not appear in snapshots")
	}
}

func TestMetricsLatencyBuckets(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	if !m.LatencyEnabled() {
		t.Fatal("expected latency histograms enabled")
	}

	// Bucket bounds are inclusive upper limits.
	m.Observe(MetricDecideLatency, 5*time.Millisecond)  // bucket 0
	m.Observe(MetricDecideLatency, 6*time.Millisecond)  // bucket 1
	m.Observe(MetricDecideLatency, 80*time.Millisecond) // bucket 4
	m.Observe(MetricDecideLatency, 2*time.Second)       // bucket 7 (+Inf)

	buckets := m.Snapshot().Histograms[MetricDecideLatency]
	want := []uint64{1, 1, 0, 0, 1, 0, 0, 1}
	for i := range want {
		if buckets[i] != want[i] {
			t.Fatalf("bucket %d = %d, want %d (all: %v)", i, buckets[i], want[i], buckets)
		}
	}
}

func TestMetricsNilReceiverSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricLoginSuccess)
	m.Observe(MetricDecideLatency, time.Millisecond)
	if got := m.Value(MetricLoginSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	_ = m.Snapshot()
}
