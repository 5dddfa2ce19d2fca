// Package metrics exposes Prometheus instrumentation for expectrd:
// session lifecycle, expect wait outcomes and latency, input byte volume,
// and HTTP request metrics via gin middleware.
package metrics
