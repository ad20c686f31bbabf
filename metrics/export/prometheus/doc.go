// Package prometheus renders fantasy11 client metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] reads a [fantasy11.Client] and exposes an [http.Handler].
// Counter names are prefixed fantasy11_*_total; the single histogram is
// fantasy11_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate client state.
package prometheus
