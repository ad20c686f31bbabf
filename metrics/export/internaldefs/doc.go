// Package internaldefs holds the metric names, help strings and bucket boundaries
// shared by the exporters, so Prometheus and OTel publish identical series.
package internaldefs
