package mpinauth

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by mpinauth APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricDecisionPhoneVerify is an exported constant or variable used by the authentication engine.
	MetricDecisionPhoneVerify MetricID = iota
	// MetricDecisionLogin is an exported constant or variable used by the authentication engine.
	MetricDecisionLogin
	// MetricDecisionHome is an exported constant or variable used by the authentication engine.
	MetricDecisionHome
	// MetricBiometricSuccess is an exported constant or variable used by the authentication engine.
	MetricBiometricSuccess
	// MetricBiometricFailure is an exported constant or variable used by the authentication engine.
	MetricBiometricFailure
	// MetricBiometricFallback is an exported constant or variable used by the authentication engine.
	MetricBiometricFallback
	// MetricLoginSuccess is an exported constant or variable used by the authentication engine.
	MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the authentication engine.
	MetricLoginFailure
	// MetricLockoutEntered is an exported constant or variable used by the authentication engine.
	MetricLockoutEntered
	// MetricLockoutExpired is an exported constant or variable used by the authentication engine.
	MetricLockoutExpired
	// MetricPhoneVerifySuccess is an exported constant or variable used by the authentication engine.
	MetricPhoneVerifySuccess
	// MetricPhoneVerifyFailure is an exported constant or variable used by the authentication engine.
	MetricPhoneVerifyFailure
	// MetricOTPSent is an exported constant or variable used by the authentication engine.
	MetricOTPSent
	// MetricOTPResent is an exported constant or variable used by the authentication engine.
	MetricOTPResent
	// MetricOTPVerifySuccess is an exported constant or variable used by the authentication engine.
	MetricOTPVerifySuccess
	// MetricOTPVerifyFailure is an exported constant or variable used by the authentication engine.
	MetricOTPVerifyFailure
	// MetricPinSetupSuccess is an exported constant or variable used by the authentication engine.
	MetricPinSetupSuccess
	// MetricPinSetupFailure is an exported constant or variable used by the authentication engine.
	MetricPinSetupFailure
	// MetricSessionTimeout is an exported constant or variable used by the authentication engine.
	MetricSessionTimeout
	// MetricLogout is an exported constant or variable used by the authentication engine.
	MetricLogout
	// MetricDecideLatency is an exported constant or variable used by the authentication engine.
	MetricDecideLatency

	metricIDCount
)

// histogramBounds are the upper bounds, in seconds, of the eight latency
// buckets. The last bucket is +Inf.
var histogramBounds = [8]time.Duration{
	5 * time.Millisecond,
	10 * time.Millisecond,
	25 * time.Millisecond,
	50 * time.Millisecond,
	100 * time.Millisecond,
	250 * time.Millisecond,
	500 * time.Millisecond,
	1<<63 - 1,
}

// Metrics holds atomic counters and optional latency histograms. When
// disabled, every operation is a no-op.
type Metrics struct {
	enabled        bool
	latencyEnabled bool
	counters       [metricIDCount]atomic.Uint64
	histograms     map[MetricID]*[8]atomic.Uint64
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	m := &Metrics{
		enabled:        cfg.Enabled,
		latencyEnabled: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
	if m.latencyEnabled {
		m.histograms = map[MetricID]*[8]atomic.Uint64{
			MetricDecideLatency: {},
		}
	}
	return m
}

// Inc describes the inc operation and its observable behavior.
//
// Inc does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Value describes the value operation and its observable behavior.
//
// Value does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// LatencyEnabled reports whether latency histograms are active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.latencyEnabled
}

// Observe describes the observe operation and its observable behavior.
//
// Observe does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.latencyEnabled {
		return
	}
	buckets, ok := m.histograms[id]
	if !ok {
		return
	}
	for i, bound := range histogramBounds {
		if d <= bound {
			buckets[i].Add(1)
			return
		}
	}
}

// Snapshot describes the snapshot operation and its observable behavior.
//
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, metricIDCount),
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		if v := m.counters[id].Load(); v > 0 {
			snap.Counters[id] = v
		}
	}
	for id, buckets := range m.histograms {
		out := make([]uint64, len(buckets))
		for i := range buckets {
			out[i] = buckets[i].Load()
		}
		snap.Histograms[id] = out
	}
	return snap
}
