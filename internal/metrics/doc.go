// Package metrics defines the Prometheus metrics exported by the server.
// Metrics are registered with promauto at package load; the promhttp
// handler is mounted on the dedicated metrics port.
package metrics
