// Package otel publishes fantasy11 client metrics through an OpenTelemetry Meter.
//
// [NewOTelExporter] registers one Int64ObservableCounter per client counter, one
// Int64ObservableGauge carrying cumulative latency bucket counts under an "le"
// attribute, and a sample-count gauge. A single callback reads
// [fantasy11.Client.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
