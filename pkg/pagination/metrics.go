package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for page coordination.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_pages_fetched_total",
		Help: "Total pages applied by pagination coordinators",
	})

	pageItemsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_page_items_total",
		Help: "Total items delivered to displays",
	})

	pageFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tweeter_page_failures_total",
		Help: "Total page fetches that failed",
	})

	requestMoreSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tweeter_request_more_skipped_total",
		Help: "RequestMore calls ignored by the guard, by reason (in_flight, exhausted)",
	}, []string{"reason"})
)
