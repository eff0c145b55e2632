// Package metrics exposes the Prometheus registry shared by the tweeter
// client packages. Metrics are defined in the packages that record them
// (pagination, dispatch, client, ratelimit) via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the tweeter client.
var Registry = prometheus.DefaultRegisterer

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Pagination Metrics (pkg/pagination):
//   - tweeter_pages_fetched_total (Counter): Pages delivered to a display
//   - tweeter_page_items_total (Counter): Items delivered across all pages
//   - tweeter_page_failures_total (Counter): Page fetches reported as errors
//   - tweeter_request_more_skipped_total{reason} (Counter): RequestMore no-ops (in_flight, exhausted)
//
// Dispatch Metrics (pkg/dispatch):
//   - tweeter_dispatch_total{task} (Counter): Units of work started
//   - tweeter_dispatch_outcomes_total{task, outcome} (Counter): Outcomes (success, failure, panic, dropped)
//   - tweeter_dispatch_duration_seconds{task} (Histogram): Work duration
//   - tweeter_dispatch_in_flight (Gauge): Work currently running
//
// Request Metrics (pkg/client):
//   - tweeter_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - tweeter_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - tweeter_errors_total{class} (Counter): Errors by class
//
// Rate Limit Metrics (pkg/ratelimit):
//   - tweeter_errors_remaining (Gauge): Errors remaining in the current window
//   - tweeter_rate_limit_blocks_total (Counter): Requests blocked at the critical threshold
//   - tweeter_rate_limit_throttles_total (Counter): Requests delayed at the warning threshold
//
// Example Prometheus Queries:
//
//   # Page failure ratio
//   rate(tweeter_page_failures_total[5m]) /
//   (rate(tweeter_pages_fetched_total[5m]) + rate(tweeter_page_failures_total[5m]))
//
//   # Average page size delivered
//   rate(tweeter_page_items_total[5m]) / rate(tweeter_pages_fetched_total[5m])
//
//   # Error budget status
//   tweeter_errors_remaining < 20
//
//   # P95 fetch latency
//   histogram_quantile(0.95, rate(tweeter_dispatch_duration_seconds_bucket{task="fetch-page"}[5m]))
