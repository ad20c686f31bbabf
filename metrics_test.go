package fantasy11

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricRequestSuccess)

	if got := m.Value(MetricRequestSuccess); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricRequestSuccess)
	m.Inc(MetricRequestSuccess)
	m.Inc(MetricRequestSuccess)

	if got := m.Value(MetricRequestSuccess); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricRequestSuccess)
	m.Observe(MetricRequestLatency, time.Millisecond)
	if m.Value(MetricRequestSuccess) != 0 || m.Enabled() || m.LatencyEnabled() {
		t.Fatal("nil metrics should record nothing")
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("nil snapshot not empty: %+v", snap)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricStaleResponseDiscarded)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricStaleResponseDiscarded); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricRequestLatency, d)
	}
	m.Observe(MetricRequestSuccess, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricRequestLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Histograms[MetricRequestSuccess]; ok {
		t.Fatal("counter ids must not carry histograms")
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricRequestSuccess)
	m.Inc(MetricRequestRejected)
	m.Inc(MetricRequestRejected)
	m.Observe(MetricRequestLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricRequestSuccess] != 1 {
		t.Fatalf("expected MetricRequestSuccess=1 got %d", snap.Counters[MetricRequestSuccess])
	}
	if snap.Counters[MetricRequestRejected] != 2 {
		t.Fatalf("expected MetricRequestRejected=2 got %d", snap.Counters[MetricRequestRejected])
	}
	if _, ok := snap.Counters[MetricRequestLatency]; ok {
		t.Fatal("latency id must not appear among counters")
	}
	if snap.Histograms[MetricRequestLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricRequestLatency][0])
	}
}

func TestMetricForKindCoversEveryKind(t *testing.T) {
	tests := map[ErrorKind]MetricID{
		KindNetwork:      MetricRequestNetworkError,
		KindProtocol:     MetricRequestProtocolError,
		KindUnauthorized: MetricRequestUnauthorized,
		KindRejected:     MetricRequestRejected,
		KindValidation:   MetricRequestValidationError,
		KindSession:      MetricRequestSessionError,
	}
	for kind, want := range tests {
		if got := metricForKind(kind); got != want {
			t.Fatalf("metricForKind(%v) = %d, want %d", kind, got, want)
		}
	}
}

func TestClientRecordsLatency(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.Metrics.EnableLatencyHistograms = true })

	if _, err := env.client.ListMatches(t.Context(), MatchAll); err != nil {
		t.Fatalf("list: %v", err)
	}

	snap := env.client.MetricsSnapshot()
	var total uint64
	for _, v := range snap.Histograms[MetricRequestLatency] {
		total += v
	}
	if total != 1 {
		t.Fatalf("latency samples = %d, want 1", total)
	}
	if snap.Counters[MetricRequestSuccess] != 1 {
		t.Fatalf("success = %d, want 1", snap.Counters[MetricRequestSuccess])
	}
}
