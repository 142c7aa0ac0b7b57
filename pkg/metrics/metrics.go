// Package metrics provides the centralized Prometheus registry reference for
// the relay client. All metrics are defined in their owning packages (client,
// cache, queue) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the relay client.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - relay_requests_total{method, status} (Counter): Settled requests by method and HTTP status
//   - relay_request_duration_seconds{method} (Histogram): Duration from submission to settlement
//   - relay_failures_total{kind} (Counter): Failure settlements by kind (transport, abort, http)
//
// Retry Metrics (pkg/client):
//   - relay_retries_total{trigger} (Counter): Retry attempts by trigger (transport, timeout, status)
//   - relay_retry_backoff_seconds (Histogram): Backoff durations slept between attempts
//   - relay_retry_exhausted_total (Counter): Requests that consumed every configured attempt
//
// Queue Metrics (pkg/queue):
//   - relay_queue_active (Gauge): Requests currently holding a concurrency slot
//   - relay_queue_wait_seconds (Histogram): Time spent waiting for a slot
//
// Cache Metrics (pkg/cache):
//   - relay_cache_hits_total{store} (Counter): Cache hits by store backend
//   - relay_cache_misses_total (Counter): Cache misses
//   - relay_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(relay_cache_hits_total[5m])) /
//   (sum(rate(relay_cache_hits_total[5m])) + sum(rate(relay_cache_misses_total[5m])))
//
//   # Failure Rate by Kind
//   rate(relay_failures_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(relay_request_duration_seconds_bucket[5m]))
//
//   # Queue Saturation
//   relay_queue_active / on() group_left() max(relay_queue_active)
