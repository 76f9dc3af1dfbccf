// Package metrics adapts the client's Metrics interface to OpenTelemetry and
// Prometheus.
//
// Both adapters create instruments lazily, on the first use of a metric
// name, so the client's metric set never has to be declared up front:
//
//	m := metrics.NewPrometheus(prometheus.DefaultRegisterer)
//	c, err := client.New(pk, sk, client.WithMetrics(m))
package metrics
