package internaldefs

import (
	fantasy11 "github.com/MrEthical07/fantasy11"
)

// CounterDef binds a client counter to its exported name.
type CounterDef struct {
	ID   fantasy11.MetricID
	Name string
	Help string
}

// HistogramDef binds a client histogram to its exported name.
type HistogramDef struct {
	ID   fantasy11.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for audit events lost to backpressure.
const AuditDroppedName = "fantasy11_audit_dropped_total"

// AuditDroppedHelp describes [AuditDroppedName].
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

var CounterDefs = []CounterDef{
	{ID: fantasy11.MetricRequestSuccess, Name: "fantasy11_request_success_total", Help: "API requests that returned a decodable 2xx response."},
	{ID: fantasy11.MetricRequestNetworkError, Name: "fantasy11_request_network_error_total", Help: "API requests that failed in transport."},
	{ID: fantasy11.MetricRequestProtocolError, Name: "fantasy11_request_protocol_error_total", Help: "API responses with a malformed body."},
	{ID: fantasy11.MetricRequestUnauthorized, Name: "fantasy11_request_unauthorized_total", Help: "API requests answered with HTTP 401."},
	{ID: fantasy11.MetricRequestRejected, Name: "fantasy11_request_rejected_total", Help: "API requests answered with another non-2xx status."},
	{ID: fantasy11.MetricRequestValidationError, Name: "fantasy11_request_validation_error_total", Help: "Calls rejected by client-side validation."},
	{ID: fantasy11.MetricRequestSessionError, Name: "fantasy11_request_session_error_total", Help: "Requests aborted because the session store failed."},
	{ID: fantasy11.MetricStaleResponseDiscarded, Name: "fantasy11_stale_response_discarded_total", Help: "Responses discarded because a newer request superseded them."},
	{ID: fantasy11.MetricSessionCreated, Name: "fantasy11_session_created_total", Help: "Sessions persisted after login or registration."},
	{ID: fantasy11.MetricSessionCleared, Name: "fantasy11_session_cleared_total", Help: "Explicit logouts."},
	{ID: fantasy11.MetricForcedLogout, Name: "fantasy11_forced_logout_total", Help: "Sessions cleared after an unauthorized response."},
}

var HistogramDefs = []HistogramDef{
	{ID: fantasy11.MetricRequestLatency, Name: "fantasy11_request_latency_seconds", Help: "API request round-trip latency."},
}

// HistogramBounds are the upper bounds of the latency buckets, in seconds.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundValues mirrors HistogramBounds without the implicit +Inf bucket.
var HistogramBoundValues = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into Prometheus-style cumulative counts.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
