package fantasy11

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one client counter or histogram.
type MetricID uint16

const (
	// MetricRequestSuccess counts 2xx responses decoded successfully.
	MetricRequestSuccess MetricID = iota
	// MetricRequestNetworkError counts transport failures.
	MetricRequestNetworkError
	// MetricRequestProtocolError counts undecodable response bodies.
	MetricRequestProtocolError
	// MetricRequestUnauthorized counts HTTP 401 responses.
	MetricRequestUnauthorized
	// MetricRequestRejected counts other non-2xx responses.
	MetricRequestRejected
	// MetricRequestValidationError counts calls rejected before sending.
	MetricRequestValidationError
	// MetricRequestSessionError counts session store read failures.
	MetricRequestSessionError
	// MetricStaleResponseDiscarded counts responses dropped because a newer request superseded them.
	MetricStaleResponseDiscarded
	// MetricSessionCreated counts sessions persisted through the client.
	MetricSessionCreated
	// MetricSessionCleared counts explicit logouts.
	MetricSessionCleared
	// MetricForcedLogout counts sessions cleared after a 401.
	MetricForcedLogout
	// MetricRequestLatency is the round-trip latency histogram.
	MetricRequestLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free client counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates counters according to cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc adds one to id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the latency histogram. Only [MetricRequestLatency] has buckets.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricRequestLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == MetricRequestLatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricRequestLatency].buckets[i])
		}
		s.Histograms[MetricRequestLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

func metricForKind(k ErrorKind) MetricID {
	switch k {
	case KindNetwork:
		return MetricRequestNetworkError
	case KindProtocol:
		return MetricRequestProtocolError
	case KindUnauthorized:
		return MetricRequestUnauthorized
	case KindValidation:
		return MetricRequestValidationError
	case KindSession:
		return MetricRequestSessionError
	default:
		return MetricRequestRejected
	}
}
